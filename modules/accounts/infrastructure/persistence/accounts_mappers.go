package persistence

import (
	"github.com/shopspring/decimal"

	"github.com/iota-uz/mailstock/modules/accounts/domain/aggregates/record"
	"github.com/iota-uz/mailstock/modules/accounts/domain/entities/sourcefile"
	"github.com/iota-uz/mailstock/modules/accounts/infrastructure/persistence/models"
)

func toDBRecord(r *record.Record) *models.Record {
	price := decimal.NullDecimal{}
	if r.Price != nil {
		price = decimal.NewNullDecimal(*r.Price)
	}
	return &models.Record{
		ID:               r.ID,
		Stage:            string(r.Stage),
		AccountID:        r.AccountID,
		Secret:           r.Secret,
		RecoveryContact:  r.RecoveryContact,
		SecondFactorCode: r.SecondFactorCode,
		SecondFactorLink: r.SecondFactorLink,
		Provider:         r.Provider,
		Status:           string(r.Status),
		Price:            price,
		NewSecret:        r.NewSecret,
		Notes:            r.Notes,
		TeamID:           r.TeamID,
		AssigneeID:       r.AssigneeID,
		SourceFileID:     r.SourceFileID,
		SourceRowOrdinal: r.SourceRowOrdinal,
		IsDistributed:    r.IsDistributed,
		CreatedAt:        r.CreatedAt,
	}
}

func toDomainRecord(dbRecord *models.Record) *record.Record {
	var price *decimal.Decimal
	if dbRecord.Price.Valid {
		p := dbRecord.Price.Decimal
		price = &p
	}
	return &record.Record{
		ID:               dbRecord.ID,
		Stage:            record.Stage(dbRecord.Stage),
		AccountID:        dbRecord.AccountID,
		Secret:           dbRecord.Secret,
		RecoveryContact:  dbRecord.RecoveryContact,
		SecondFactorCode: dbRecord.SecondFactorCode,
		SecondFactorLink: dbRecord.SecondFactorLink,
		Provider:         dbRecord.Provider,
		Status:           record.Status(dbRecord.Status),
		Price:            price,
		NewSecret:        dbRecord.NewSecret,
		Notes:            dbRecord.Notes,
		TeamID:           dbRecord.TeamID,
		AssigneeID:       dbRecord.AssigneeID,
		SourceFileID:     dbRecord.SourceFileID,
		SourceRowOrdinal: dbRecord.SourceRowOrdinal,
		IsDistributed:    dbRecord.IsDistributed,
		CreatedAt:        dbRecord.CreatedAt,
	}
}

func toDomainSourceFile(dbFile *models.SourceFile) *sourcefile.SourceFile {
	return &sourcefile.SourceFile{
		ID:         dbFile.ID,
		FileName:   dbFile.FileName,
		Source:     dbFile.Source,
		Count:      dbFile.Count,
		UploadedAt: dbFile.UploadedAt,
	}
}
