package services

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/mailstock/modules/core/domain/aggregates/user"
	"github.com/iota-uz/mailstock/modules/core/domain/entities/session"
	"github.com/iota-uz/mailstock/modules/core/domain/entities/team"
)

type memUserRepo struct {
	nextID uint
	users  []*user.User
}

func (m *memUserRepo) GetByID(ctx context.Context, id uint) (*user.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUserRepo) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUserRepo) List(ctx context.Context, params *user.FindParams) ([]*user.User, error) {
	var results []*user.User
	for _, u := range m.users {
		if params != nil {
			if params.TeamID != nil && (u.TeamID == nil || *u.TeamID != *params.TeamID) {
				continue
			}
			if params.Role != "" && u.Role != params.Role {
				continue
			}
		}
		results = append(results, u)
	}
	return results, nil
}

func (m *memUserRepo) Create(ctx context.Context, u *user.User) error {
	m.nextID++
	u.ID = m.nextID
	m.users = append(m.users, u)
	return nil
}

func (m *memUserRepo) Update(ctx context.Context, u *user.User) error {
	for i, existing := range m.users {
		if existing.ID == u.ID {
			m.users[i] = u
			return nil
		}
	}
	return pgx.ErrNoRows
}

type memTeamRepo struct {
	nextID uint
	teams  []*team.Team
}

func (m *memTeamRepo) GetAll(ctx context.Context) ([]*team.Team, error) {
	return m.teams, nil
}

func (m *memTeamRepo) GetByID(ctx context.Context, id uint) (*team.Team, error) {
	for _, t := range m.teams {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memTeamRepo) GetByName(ctx context.Context, name string) (*team.Team, error) {
	for _, t := range m.teams {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memTeamRepo) GetOrCreateByName(ctx context.Context, name string) (*team.Team, error) {
	if t, err := m.GetByName(ctx, name); err == nil {
		return t, nil
	}
	m.nextID++
	t := &team.Team{ID: m.nextID, Name: name}
	m.teams = append(m.teams, t)
	return t, nil
}

type memSessionRepo struct {
	sessions map[string]*session.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]*session.Session)}
}

func (m *memSessionRepo) GetByToken(ctx context.Context, token string) (*session.Session, error) {
	if s, ok := m.sessions[token]; ok {
		return s, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *memSessionRepo) Create(ctx context.Context, s *session.Session) error {
	m.sessions[s.Token] = s
	return nil
}

func (m *memSessionRepo) Delete(ctx context.Context, token string) error {
	delete(m.sessions, token)
	return nil
}

func (m *memSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	var deleted int64
	for token, s := range m.sessions {
		if s.Expired() {
			delete(m.sessions, token)
			deleted++
		}
	}
	return deleted, nil
}
