package models

import "time"

type Team struct {
	ID        uint
	Name      string
	CreatedAt time.Time
}

type User struct {
	ID               uint
	Username         string
	PasswordHash     string
	IsAdmin          bool
	Role             string
	TeamID           *uint
	ProviderAffinity *string
	CreatedAt        time.Time
}

type Session struct {
	Token     string
	UserID    uint
	ExpiresAt time.Time
	CreatedAt time.Time
}
