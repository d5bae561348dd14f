package services

import (
	"context"
	"net/http"
	"strings"

	"github.com/iota-uz/mailstock/modules/core/domain/aggregates/user"
	"github.com/iota-uz/mailstock/modules/core/domain/entities/team"
)

type UsersService struct {
	repo  user.Repository
	teams team.Repository
}

func NewUsersService(repo user.Repository, teams team.Repository) *UsersService {
	return &UsersService{repo: repo, teams: teams}
}

func (s *UsersService) GetByID(ctx context.Context, id uint) (*user.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapPgErrorToServiceError(err)
	}
	return u, nil
}

func (s *UsersService) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, mapPgErrorToServiceError(err)
	}
	return u, nil
}

type RegisterInput struct {
	Username string
	Password string
	TeamName string
}

// Register creates a user with the default team-lead role. Team membership
// is optional at registration; role promotion happens out of band.
func (s *UsersService) Register(ctx context.Context, input RegisterInput) (*user.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, newServiceError(http.StatusBadRequest, "CORE_INVALID", "username and password are required", nil)
	}

	u := &user.User{
		Username: username,
		Role:     user.RoleTL,
	}
	if err := u.SetPassword(input.Password); err != nil {
		return nil, newServiceError(http.StatusInternalServerError, "CORE_INTERNAL", "failed to hash password", err)
	}

	if teamName := strings.TrimSpace(input.TeamName); teamName != "" {
		if !team.IsValidName(teamName) {
			return nil, newServiceError(http.StatusBadRequest, "CORE_INVALID", "unknown team", nil)
		}
		t, err := s.teams.GetOrCreateByName(ctx, teamName)
		if err != nil {
			return nil, mapPgErrorToServiceError(err)
		}
		u.TeamID = &t.ID
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, mapPgErrorToServiceError(err)
	}
	return u, nil
}

// TeamLeads returns the team-lead profiles of a team.
func (s *UsersService) TeamLeads(ctx context.Context, teamID uint) ([]*user.User, error) {
	leads, err := s.repo.List(ctx, &user.FindParams{TeamID: &teamID, Role: user.RoleTL})
	if err != nil {
		return nil, mapPgErrorToServiceError(err)
	}
	return leads, nil
}
