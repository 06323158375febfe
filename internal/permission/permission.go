// Package permission defines the closed capability set governing what a
// user may do with a specific agent's data. Capabilities are a fixed enum,
// so an unrecognized capability name is a compile-time error rather than a
// silently ignored map key.
package permission

import "voxadmin/internal/model"

// Capability is one of the four scoped read/export rights on an agent.
type Capability uint8

const (
	ViewSessions Capability = 1 << iota
	ViewLogs
	ViewConversations
	ExportData
)

// String returns the wire name of the capability.
func (c Capability) String() string {
	switch c {
	case ViewSessions:
		return "view_sessions"
	case ViewLogs:
		return "view_logs"
	case ViewConversations:
		return "view_conversations"
	case ExportData:
		return "export_data"
	}
	return "unknown"
}

// Set is the effective permission set for a (user, agent) pair.
type Set uint8

// Full returns the set holding every capability. Admins get this
// unconditionally with no assignment lookup.
func Full() Set {
	return Set(ViewSessions | ViewLogs | ViewConversations | ExportData)
}

// FromAssignment maps an assignment row's flags to a Set. CanMark is gated
// separately and deliberately not part of the set.
func FromAssignment(a *model.UserAgentAssignment) Set {
	var s Set
	if a.CanViewSessions {
		s |= Set(ViewSessions)
	}
	if a.CanViewLogs {
		s |= Set(ViewLogs)
	}
	if a.CanViewConversations {
		s |= Set(ViewConversations)
	}
	if a.CanExportData {
		s |= Set(ExportData)
	}
	return s
}

// Has reports whether the set grants the capability.
func (s Set) Has(c Capability) bool {
	return s&Set(c) != 0
}
