package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/iota-uz/mailstock/modules/accounts/domain/aggregates/record"
	"github.com/iota-uz/mailstock/modules/accounts/infrastructure/persistence/models"
	"github.com/iota-uz/mailstock/pkg/composables"
	"github.com/iota-uz/mailstock/pkg/repo"
)

const recordColumns = `id, stage, account_id, secret, recovery_contact, second_factor_code, second_factor_link,
	provider, status, price, new_secret, notes, team_id, assignee_id, source_file_id, source_row_ordinal,
	is_distributed, created_at`

type RecordRepository struct{}

func NewRecordRepository() record.Repository {
	return &RecordRepository{}
}

func scanRecord(row interface{ Scan(dest ...any) error }) (*models.Record, error) {
	var dbRow models.Record
	if err := row.Scan(
		&dbRow.ID,
		&dbRow.Stage,
		&dbRow.AccountID,
		&dbRow.Secret,
		&dbRow.RecoveryContact,
		&dbRow.SecondFactorCode,
		&dbRow.SecondFactorLink,
		&dbRow.Provider,
		&dbRow.Status,
		&dbRow.Price,
		&dbRow.NewSecret,
		&dbRow.Notes,
		&dbRow.TeamID,
		&dbRow.AssigneeID,
		&dbRow.SourceFileID,
		&dbRow.SourceRowOrdinal,
		&dbRow.IsDistributed,
		&dbRow.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &dbRow, nil
}

func (r *RecordRepository) GetByID(ctx context.Context, stage record.Stage, id uint) (*record.Record, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	dbRow, err := scanRecord(tx.QueryRow(
		ctx,
		`SELECT `+recordColumns+` FROM records WHERE stage = $1 AND id = $2`,
		string(stage), id,
	))
	if err != nil {
		return nil, err
	}
	return toDomainRecord(dbRow), nil
}

func (r *RecordRepository) GetByAccountID(ctx context.Context, stage record.Stage, accountID string) (*record.Record, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	dbRow, err := scanRecord(tx.QueryRow(
		ctx,
		`SELECT `+recordColumns+` FROM records WHERE stage = $1 AND account_id = $2`,
		string(stage), accountID,
	))
	if err != nil {
		return nil, err
	}
	return toDomainRecord(dbRow), nil
}

func (r *RecordRepository) List(ctx context.Context, params *record.FindParams) ([]*record.Record, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	where, args := buildRecordFilters(params)
	query := `SELECT ` + recordColumns + ` FROM records WHERE ` + strings.Join(where, " AND ") + ` ORDER BY id`
	if params != nil {
		query += " " + repo.FormatLimitOffset(params.Limit, params.Offset)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*record.Record
	for rows.Next() {
		dbRow, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, toDomainRecord(dbRow))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *RecordRepository) Count(ctx context.Context, params *record.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	where, args := buildRecordFilters(params)

	var count int64
	if err := tx.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM records WHERE `+strings.Join(where, " AND "),
		args...,
	).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *RecordRepository) Exists(ctx context.Context, stage record.Stage, accountID string) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := tx.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM records WHERE stage = $1 AND account_id = $2)`,
		string(stage), accountID,
	).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *RecordRepository) ExistingAccountIDs(ctx context.Context, stage record.Stage, accountIDs []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	if len(accountIDs) == 0 {
		return existing, nil
	}

	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(
		ctx,
		`SELECT account_id FROM records WHERE stage = $1 AND account_id = ANY($2)`,
		string(stage), accountIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var accountID string
		if err := rows.Scan(&accountID); err != nil {
			return nil, err
		}
		existing[accountID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return existing, nil
}

func (r *RecordRepository) ProviderCounts(ctx context.Context, params *record.FindParams) (map[string]int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	where, args := buildRecordFilters(params)

	rows, err := tx.Query(
		ctx,
		`SELECT provider, COUNT(*) FROM records WHERE `+strings.Join(where, " AND ")+` GROUP BY provider`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var provider string
		var count int64
		if err := rows.Scan(&provider, &count); err != nil {
			return nil, err
		}
		counts[provider] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *RecordRepository) Create(ctx context.Context, rec *record.Record) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	dbRow := toDBRecord(rec)
	return tx.QueryRow(
		ctx,
		`INSERT INTO records (stage, account_id, secret, recovery_contact, second_factor_code, second_factor_link,
			provider, status, price, new_secret, notes, team_id, assignee_id, source_file_id, source_row_ordinal,
			is_distributed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING id, created_at`,
		dbRow.Stage,
		dbRow.AccountID,
		dbRow.Secret,
		dbRow.RecoveryContact,
		dbRow.SecondFactorCode,
		dbRow.SecondFactorLink,
		dbRow.Provider,
		dbRow.Status,
		dbRow.Price,
		dbRow.NewSecret,
		dbRow.Notes,
		dbRow.TeamID,
		dbRow.AssigneeID,
		dbRow.SourceFileID,
		dbRow.SourceRowOrdinal,
		dbRow.IsDistributed,
	).Scan(&rec.ID, &rec.CreatedAt)
}

func (r *RecordRepository) Update(ctx context.Context, rec *record.Record) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	dbRow := toDBRecord(rec)
	_, err = tx.Exec(
		ctx,
		`UPDATE records
		 SET secret = $1, recovery_contact = $2, second_factor_code = $3, second_factor_link = $4,
		     provider = $5, status = $6, price = $7, new_secret = $8, notes = $9, team_id = $10,
		     assignee_id = $11, is_distributed = $12
		 WHERE id = $13`,
		dbRow.Secret,
		dbRow.RecoveryContact,
		dbRow.SecondFactorCode,
		dbRow.SecondFactorLink,
		dbRow.Provider,
		dbRow.Status,
		dbRow.Price,
		dbRow.NewSecret,
		dbRow.Notes,
		dbRow.TeamID,
		dbRow.AssigneeID,
		dbRow.IsDistributed,
		dbRow.ID,
	)
	return err
}

func (r *RecordRepository) SetDistributed(ctx context.Context, id uint, distributed bool) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `UPDATE records SET is_distributed = $1 WHERE id = $2`, distributed, id)
	return err
}

func (r *RecordRepository) Delete(ctx context.Context, stage record.Stage, id uint) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM records WHERE stage = $1 AND id = $2`, string(stage), id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *RecordRepository) DeleteAll(ctx context.Context, params *record.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	where, args := buildRecordFilters(params)
	tag, err := tx.Exec(ctx, `DELETE FROM records WHERE `+strings.Join(where, " AND "), args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func buildRecordFilters(params *record.FindParams) ([]string, []interface{}) {
	where := []string{"1 = 1"}
	var args []interface{}
	argPos := 1

	if params == nil {
		return where, args
	}
	if params.Stage != "" {
		where = append(where, fmt.Sprintf("stage = $%d", argPos))
		args = append(args, string(params.Stage))
		argPos++
	}
	if len(params.IDs) > 0 {
		where = append(where, fmt.Sprintf("id = ANY($%d)", argPos))
		args = append(args, params.IDs)
		argPos++
	}
	if len(params.AccountIDs) > 0 {
		where = append(where, fmt.Sprintf("account_id = ANY($%d)", argPos))
		args = append(args, params.AccountIDs)
		argPos++
	}
	if params.TeamID != nil {
		where = append(where, fmt.Sprintf("team_id = $%d", argPos))
		args = append(args, *params.TeamID)
		argPos++
	}
	if params.AssigneeID != nil {
		where = append(where, fmt.Sprintf("assignee_id = $%d", argPos))
		args = append(args, *params.AssigneeID)
		argPos++
	}
	if params.SourceFileID != nil {
		where = append(where, fmt.Sprintf("source_file_id = $%d", argPos))
		args = append(args, *params.SourceFileID)
		argPos++
	}
	if params.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", argPos))
		args = append(args, string(params.Status))
		argPos++
	}
	if params.Distributed != nil {
		where = append(where, fmt.Sprintf("is_distributed = $%d", argPos))
		args = append(args, *params.Distributed)
		argPos++
	}
	return where, args
}
