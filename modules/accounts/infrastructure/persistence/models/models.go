package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Record struct {
	ID               uint
	Stage            string
	AccountID        string
	Secret           string
	RecoveryContact  string
	SecondFactorCode string
	SecondFactorLink string
	Provider         string
	Status           string
	Price            decimal.NullDecimal
	NewSecret        string
	Notes            string
	TeamID           *uint
	AssigneeID       *uint
	SourceFileID     *uint
	SourceRowOrdinal int
	IsDistributed    bool
	CreatedAt        time.Time
}

type SourceFile struct {
	ID         uint
	FileName   string
	Source     string
	Count      int
	UploadedAt time.Time
}
