package team

import (
	"context"
	"time"
)

// Names is the fixed set of teams records can be assigned to.
var Names = []string{"Manager 1", "Manager 2"}

func IsValidName(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}

type Team struct {
	ID        uint
	Name      string
	CreatedAt time.Time
}

type Repository interface {
	GetAll(ctx context.Context) ([]*Team, error)
	GetByID(ctx context.Context, id uint) (*Team, error)
	GetByName(ctx context.Context, name string) (*Team, error)
	GetOrCreateByName(ctx context.Context, name string) (*Team, error)
}
