package user

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	RoleManager Role = "manager"
	RoleTL      Role = "tl"
)

func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleManager:
		return RoleManager, true
	case RoleTL:
		return RoleTL, true
	}
	return "", false
}

// User is an authenticated account together with its workflow profile:
// admin flag, tier role, team membership and, for team leads, the provider
// affinity used to route records during distribution.
type User struct {
	ID           uint
	Username     string
	PasswordHash string
	IsAdmin      bool
	Role         Role
	TeamID       *uint
	// ProviderAffinity is the email-domain specialty of a team lead
	// (e.g. "gmail"); empty for managers and admins.
	ProviderAffinity string
	CreatedAt        time.Time
}

func (u *User) SetPassword(raw string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) CheckPassword(raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(raw)) == nil
}

func (u *User) InTeam() bool {
	return u.TeamID != nil
}

type FindParams struct {
	TeamID *uint
	Role   Role
	Limit  int
	Offset int
}

type Repository interface {
	GetByID(ctx context.Context, id uint) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context, params *FindParams) ([]*User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
}
