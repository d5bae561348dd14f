package dtos

import (
	"time"

	"github.com/iota-uz/mailstock/modules/accounts/domain/aggregates/record"
	"github.com/iota-uz/mailstock/modules/accounts/domain/entities/sourcefile"
)

type RecordDTO struct {
	ID               uint      `json:"id"`
	AccountID        string    `json:"account_id"`
	Secret           string    `json:"secret"`
	RecoveryContact  string    `json:"recovery_contact,omitempty"`
	SecondFactorCode string    `json:"second_factor_code,omitempty"`
	SecondFactorLink string    `json:"second_factor_link,omitempty"`
	Provider         string    `json:"provider"`
	Status           string    `json:"status"`
	Price            *string   `json:"price,omitempty"`
	NewSecret        string    `json:"new_secret,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	TeamID           *uint     `json:"team_id,omitempty"`
	AssigneeID       *uint     `json:"assignee_id,omitempty"`
	SourceFileID     *uint     `json:"source_file_id,omitempty"`
	IsDistributed    bool      `json:"is_distributed"`
	CreatedAt        time.Time `json:"created_at"`
}

func FromRecord(rec *record.Record) RecordDTO {
	var price *string
	if rec.Price != nil {
		p := rec.Price.String()
		price = &p
	}
	return RecordDTO{
		ID:               rec.ID,
		AccountID:        rec.AccountID,
		Secret:           rec.Secret,
		RecoveryContact:  rec.RecoveryContact,
		SecondFactorCode: rec.SecondFactorCode,
		SecondFactorLink: rec.SecondFactorLink,
		Provider:         rec.Provider,
		Status:           string(rec.Status),
		Price:            price,
		NewSecret:        rec.NewSecret,
		Notes:            rec.Notes,
		TeamID:           rec.TeamID,
		AssigneeID:       rec.AssigneeID,
		SourceFileID:     rec.SourceFileID,
		IsDistributed:    rec.IsDistributed,
		CreatedAt:        rec.CreatedAt,
	}
}

func FromRecords(records []*record.Record) []RecordDTO {
	out := make([]RecordDTO, 0, len(records))
	for _, rec := range records {
		out = append(out, FromRecord(rec))
	}
	return out
}

type SourceFileDTO struct {
	ID         uint      `json:"id"`
	FileName   string    `json:"file_name"`
	Source     string    `json:"source"`
	Count      int       `json:"count"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func FromSourceFile(f *sourcefile.SourceFile) SourceFileDTO {
	return SourceFileDTO{
		ID:         f.ID,
		FileName:   f.FileName,
		Source:     f.Source,
		Count:      f.Count,
		UploadedAt: f.UploadedAt,
	}
}

type PaginatedRecords struct {
	Items          []RecordDTO      `json:"items"`
	Total          int64            `json:"total"`
	CurrentPage    int              `json:"current_page"`
	TotalPages     int              `json:"total_pages"`
	HasNext        bool             `json:"has_next"`
	HasPrev        bool             `json:"has_prev"`
	ProviderCounts map[string]int64 `json:"provider_counts,omitempty"`
}
