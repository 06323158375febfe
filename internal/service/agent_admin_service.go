package service

import (
	"context"

	"github.com/google/uuid"

	"voxadmin/internal/model"
	"voxadmin/internal/repository"
)

// AgentWithAssignments pairs an agent with its assignment count for the
// admin listing.
type AgentWithAssignments struct {
	model.Agent
	AssignmentCount int64 `json:"assignment_count"`
}

// AgentAdminService serves the admin agent surface. Agents are created and
// refreshed by the external sync process; this side only reads them.
type AgentAdminService interface {
	List(ctx context.Context) ([]AgentWithAssignments, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Agent, error)
}

type agentAdminService struct {
	agents      repository.AgentRepository
	assignments repository.AssignmentRepository
}

// NewAgentAdminService creates a new admin agent service.
func NewAgentAdminService(agents repository.AgentRepository, assignments repository.AssignmentRepository) AgentAdminService {
	return &agentAdminService{agents: agents, assignments: assignments}
}

func (s *agentAdminService) List(ctx context.Context) ([]AgentWithAssignments, error) {
	agents, err := s.agents.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]AgentWithAssignments, 0, len(agents))
	for _, agent := range agents {
		count, err := s.assignments.CountByAgent(ctx, agent.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, AgentWithAssignments{Agent: agent, AssignmentCount: count})
	}
	return out, nil
}

func (s *agentAdminService) Get(ctx context.Context, id uuid.UUID) (*model.Agent, error) {
	return s.agents.FindByID(ctx, id)
}
