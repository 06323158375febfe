// Package telephony holds the call-greeting webhook logic. The external
// telephony provider calls the webhook at call start and plays back the
// returned greeting.
package telephony

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"voxadmin/internal/repository"
)

// ErrBadToken is returned when the webhook credential does not match.
var ErrBadToken = errors.New("invalid telephony token")

// Greeting is the webhook response payload.
type Greeting struct {
	AgentID  string `json:"agent_id,omitempty"`
	Greeting string `json:"greeting"`
	Voice    string `json:"voice,omitempty"`
}

// GreetingService resolves the greeting to play for an incoming call.
type GreetingService struct {
	agents          repository.AgentRepository
	token           string
	defaultGreeting string
}

// NewGreetingService creates a greeting resolver. token is the shared
// secret the provider presents on every webhook call.
func NewGreetingService(agents repository.AgentRepository, token, defaultGreeting string) *GreetingService {
	return &GreetingService{agents: agents, token: token, defaultGreeting: defaultGreeting}
}

// Authorize checks the provider's shared secret in constant time.
func (s *GreetingService) Authorize(token string) error {
	if s.token == "" {
		return ErrBadToken
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) != 1 {
		return ErrBadToken
	}
	return nil
}

// Resolve returns the agent's configured greeting, falling back to the
// default for unknown agents or agents without one. The provider expects a
// payload on every call, so lookup failures are not surfaced as errors.
func (s *GreetingService) Resolve(ctx context.Context, agentID string) *Greeting {
	id, err := uuid.Parse(agentID)
	if err != nil {
		return &Greeting{Greeting: s.defaultGreeting}
	}
	agent, err := s.agents.FindByID(ctx, id)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return &Greeting{Greeting: s.defaultGreeting}
	}
	if err != nil || agent.Greeting == "" {
		return &Greeting{AgentID: agentID, Greeting: s.defaultGreeting}
	}
	return &Greeting{AgentID: agentID, Greeting: agent.Greeting}
}
