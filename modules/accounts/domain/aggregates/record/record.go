package record

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Stage is the workflow tier a record currently sits in. The same account
// identifier may exist in several stages at once, but only once per stage.
type Stage string

const (
	StageAdmin    Stage = "admin"
	StageManager  Stage = "manager"
	StageTeamLead Stage = "teamlead"
	StageClosed   Stage = "closed"
)

func ParseStage(s string) (Stage, bool) {
	switch Stage(strings.ToLower(strings.TrimSpace(s))) {
	case StageAdmin:
		return StageAdmin, true
	case StageManager:
		return StageManager, true
	case StageTeamLead:
		return StageTeamLead, true
	case StageClosed:
		return StageClosed, true
	}
	return "", false
}

type Status string

const (
	StatusWorking       Status = "working"
	StatusClosed        Status = "closed"
	StatusPendingClosed Status = "pending_closed"
)

func ParseStatus(s string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusWorking:
		return StatusWorking, true
	case StatusClosed:
		return StatusClosed, true
	case StatusPendingClosed:
		return StatusPendingClosed, true
	}
	return "", false
}

// Record is one email-account credential entry. AccountID is the addressable
// identity (the email address); it is unique within a stage.
type Record struct {
	ID               uint
	Stage            Stage
	AccountID        string
	Secret           string
	RecoveryContact  string
	SecondFactorCode string
	SecondFactorLink string
	Provider         string
	Status           Status
	Price            *decimal.Decimal
	NewSecret        string
	Notes            string
	TeamID           *uint
	AssigneeID       *uint
	SourceFileID     *uint
	SourceRowOrdinal int
	IsDistributed    bool
	CreatedAt        time.Time
}

// CopyTo returns a copy of the record placed in another stage. The copy
// keeps the credential payload, status and provenance but drops stage-local
// state: identity, assignee and the distribution flag.
func (r *Record) CopyTo(stage Stage) *Record {
	return &Record{
		Stage:            stage,
		AccountID:        r.AccountID,
		Secret:           r.Secret,
		RecoveryContact:  r.RecoveryContact,
		SecondFactorCode: r.SecondFactorCode,
		SecondFactorLink: r.SecondFactorLink,
		Provider:         r.Provider,
		Status:           r.Status,
		Price:            r.Price,
		NewSecret:        r.NewSecret,
		Notes:            r.Notes,
		TeamID:           r.TeamID,
		SourceFileID:     r.SourceFileID,
		SourceRowOrdinal: r.SourceRowOrdinal,
	}
}

// InferProvider derives the provider from the account identifier: the text
// after "@" and before the first ".", lower-cased. Identifiers without "@"
// default to gmail.
func InferProvider(accountID string) string {
	at := strings.Index(accountID, "@")
	if at < 0 || at == len(accountID)-1 {
		return "gmail"
	}
	domain := accountID[at+1:]
	if dot := strings.Index(domain, "."); dot >= 0 {
		domain = domain[:dot]
	}
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return "gmail"
	}
	return domain
}

type FindParams struct {
	Stage        Stage
	IDs          []uint
	AccountIDs   []string
	TeamID       *uint
	AssigneeID   *uint
	SourceFileID *uint
	Status       Status
	Distributed  *bool
	Limit        int
	Offset       int
}

type Repository interface {
	GetByID(ctx context.Context, stage Stage, id uint) (*Record, error)
	GetByAccountID(ctx context.Context, stage Stage, accountID string) (*Record, error)
	List(ctx context.Context, params *FindParams) ([]*Record, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
	Exists(ctx context.Context, stage Stage, accountID string) (bool, error)
	ExistingAccountIDs(ctx context.Context, stage Stage, accountIDs []string) (map[string]bool, error)
	ProviderCounts(ctx context.Context, params *FindParams) (map[string]int64, error)
	Create(ctx context.Context, r *Record) error
	Update(ctx context.Context, r *Record) error
	SetDistributed(ctx context.Context, id uint, distributed bool) error
	Delete(ctx context.Context, stage Stage, id uint) (int64, error)
	DeleteAll(ctx context.Context, params *FindParams) (int64, error)
}
