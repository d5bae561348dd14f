package services

import (
	"context"
	"net/http"

	"github.com/iota-uz/mailstock/modules/core/domain/entities/team"
)

type TeamsService struct {
	repo team.Repository
}

func NewTeamsService(repo team.Repository) *TeamsService {
	return &TeamsService{repo: repo}
}

func (s *TeamsService) GetAll(ctx context.Context) ([]*team.Team, error) {
	teams, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, mapPgErrorToServiceError(err)
	}
	return teams, nil
}

func (s *TeamsService) GetByID(ctx context.Context, id uint) (*team.Team, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapPgErrorToServiceError(err)
	}
	return t, nil
}

// GetOrCreateByName resolves a team from the fixed enumeration, creating it
// on first use.
func (s *TeamsService) GetOrCreateByName(ctx context.Context, name string) (*team.Team, error) {
	if !team.IsValidName(name) {
		return nil, newServiceError(http.StatusBadRequest, "CORE_INVALID", "invalid team selected", nil)
	}
	t, err := s.repo.GetOrCreateByName(ctx, name)
	if err != nil {
		return nil, mapPgErrorToServiceError(err)
	}
	return t, nil
}
