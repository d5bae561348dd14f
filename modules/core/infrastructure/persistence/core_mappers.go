package persistence

import (
	"github.com/iota-uz/mailstock/modules/core/domain/aggregates/user"
	"github.com/iota-uz/mailstock/modules/core/domain/entities/session"
	"github.com/iota-uz/mailstock/modules/core/domain/entities/team"
	"github.com/iota-uz/mailstock/modules/core/infrastructure/persistence/models"
)

func toDBUser(u *user.User) *models.User {
	var affinity *string
	if u.ProviderAffinity != "" {
		affinity = &u.ProviderAffinity
	}
	return &models.User{
		ID:               u.ID,
		Username:         u.Username,
		PasswordHash:     u.PasswordHash,
		IsAdmin:          u.IsAdmin,
		Role:             string(u.Role),
		TeamID:           u.TeamID,
		ProviderAffinity: affinity,
		CreatedAt:        u.CreatedAt,
	}
}

func toDomainUser(dbUser *models.User) *user.User {
	affinity := ""
	if dbUser.ProviderAffinity != nil {
		affinity = *dbUser.ProviderAffinity
	}
	return &user.User{
		ID:               dbUser.ID,
		Username:         dbUser.Username,
		PasswordHash:     dbUser.PasswordHash,
		IsAdmin:          dbUser.IsAdmin,
		Role:             user.Role(dbUser.Role),
		TeamID:           dbUser.TeamID,
		ProviderAffinity: affinity,
		CreatedAt:        dbUser.CreatedAt,
	}
}

func toDomainTeam(dbTeam *models.Team) *team.Team {
	return &team.Team{
		ID:        dbTeam.ID,
		Name:      dbTeam.Name,
		CreatedAt: dbTeam.CreatedAt,
	}
}

func toDomainSession(dbSession *models.Session) *session.Session {
	return &session.Session{
		Token:     dbSession.Token,
		UserID:    dbSession.UserID,
		ExpiresAt: dbSession.ExpiresAt,
		CreatedAt: dbSession.CreatedAt,
	}
}
