package persistence

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/mailstock/modules/accounts/domain/aggregates/record"
	"github.com/iota-uz/mailstock/pkg/constants"
)

func recordRow(id uint, stage, accountID, provider string) []any {
	var teamID, assigneeID, sourceFileID *uint
	return []any{
		id,
		stage,
		accountID,
		"secret",
		"recovery@backup.com",
		"",
		"",
		provider,
		"working",
		decimal.NewNullDecimal(decimal.NewFromInt(10)),
		"",
		"",
		teamID,
		assigneeID,
		sourceFileID,
		1,
		false,
		time.Now(),
	}
}

func TestRecordRepository_GetByAccountID(t *testing.T) {
	repo := NewRecordRepository()

	tx := &stubTx{
		queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			require.Contains(t, sql, "WHERE stage = $1 AND account_id = $2")
			require.Equal(t, []any{"admin", "john@gmail.com"}, args)
			return stubRow{scan: func(dest ...any) error {
				return scanInto(dest, recordRow(7, "admin", "john@gmail.com", "gmail"))
			}}
		},
	}
	ctx := context.WithValue(context.Background(), constants.TxKey, tx)

	rec, err := repo.GetByAccountID(ctx, record.StageAdmin, "john@gmail.com")
	require.NoError(t, err)
	require.Equal(t, uint(7), rec.ID)
	require.Equal(t, record.StageAdmin, rec.Stage)
	require.Equal(t, "john@gmail.com", rec.AccountID)
	require.NotNil(t, rec.Price)
	require.True(t, rec.Price.Equal(decimal.NewFromInt(10)))
}

func TestRecordRepository_ListFilters(t *testing.T) {
	repo := NewRecordRepository()
	teamID := uint(3)
	distributed := false

	var captured string
	var capturedArgs []any
	tx := &stubTx{
		queryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			captured = sql
			capturedArgs = args
			return &stubRows{data: [][]any{
				recordRow(1, "manager", "a@gmail.com", "gmail"),
				recordRow(2, "manager", "b@yahoo.com", "yahoo"),
			}}, nil
		},
	}
	ctx := context.WithValue(context.Background(), constants.TxKey, tx)

	results, err := repo.List(ctx, &record.FindParams{
		Stage:       record.StageManager,
		TeamID:      &teamID,
		Distributed: &distributed,
		Limit:       10,
		Offset:      20,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Contains(t, captured, "stage = $1")
	require.Contains(t, captured, "team_id = $2")
	require.Contains(t, captured, "is_distributed = $3")
	require.Contains(t, captured, "ORDER BY id")
	require.Contains(t, captured, "LIMIT 10 OFFSET 20")
	require.Equal(t, []any{"manager", uint(3), false}, capturedArgs)
	require.Equal(t, "b@yahoo.com", results[1].AccountID)
}

func TestRecordRepository_ExistingAccountIDs(t *testing.T) {
	repo := NewRecordRepository()

	tx := &stubTx{
		queryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			require.Contains(t, sql, "account_id = ANY($2)")
			require.Equal(t, "admin", args[0])
			return &stubRows{data: [][]any{{"a@gmail.com"}}}, nil
		},
	}
	ctx := context.WithValue(context.Background(), constants.TxKey, tx)

	existing, err := repo.ExistingAccountIDs(ctx, record.StageAdmin, []string{"a@gmail.com", "b@gmail.com"})
	require.NoError(t, err)
	require.True(t, existing["a@gmail.com"])
	require.False(t, existing["b@gmail.com"])
}

func TestRecordRepository_ExistingAccountIDsEmptyInput(t *testing.T) {
	repo := NewRecordRepository()

	// no query should be issued when there is nothing to look up
	existing, err := repo.ExistingAccountIDs(context.Background(), record.StageAdmin, nil)
	require.NoError(t, err)
	require.Empty(t, existing)
}

func TestRecordRepository_Create(t *testing.T) {
	repo := NewRecordRepository()
	price := decimal.NewFromFloat(12.5)

	tx := &stubTx{
		queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			require.Contains(t, sql, "INSERT INTO records")
			require.Contains(t, sql, "RETURNING id, created_at")
			require.Len(t, args, 16)
			require.Equal(t, "admin", args[0])
			require.Equal(t, "jane@yahoo.com", args[1])
			return stubRow{scan: func(dest ...any) error {
				*(dest[0].(*uint)) = 42
				*(dest[1].(*time.Time)) = time.Now()
				return nil
			}}
		},
	}
	ctx := context.WithValue(context.Background(), constants.TxKey, tx)

	rec := &record.Record{
		Stage:     record.StageAdmin,
		AccountID: "jane@yahoo.com",
		Secret:    "pw",
		Provider:  "yahoo",
		Status:    record.StatusWorking,
		Price:     &price,
	}
	require.NoError(t, repo.Create(ctx, rec))
	require.Equal(t, uint(42), rec.ID)
	require.False(t, rec.CreatedAt.IsZero())
}

func TestRecordRepository_DeleteAllReturnsAffected(t *testing.T) {
	repo := NewRecordRepository()
	fileID := uint(9)

	tx := &stubTx{
		execFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			require.Contains(t, sql, "DELETE FROM records WHERE 1 = 1 AND stage = $1 AND source_file_id = $2")
			require.Equal(t, []any{"admin", uint(9)}, args)
			return pgconn.NewCommandTag("DELETE 3"), nil
		},
	}
	ctx := context.WithValue(context.Background(), constants.TxKey, tx)

	affected, err := repo.DeleteAll(ctx, &record.FindParams{Stage: record.StageAdmin, SourceFileID: &fileID})
	require.NoError(t, err)
	require.Equal(t, int64(3), affected)
}

func TestRecordRepository_NoTxFallsBackToPool(t *testing.T) {
	repo := NewRecordRepository()

	_, err := repo.GetByID(context.Background(), record.StageAdmin, 1)
	require.Error(t, err)
}

type stubTx struct {
	queryFunc    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	queryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
	execFunc     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (s *stubTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if s.execFunc == nil {
		return pgconn.CommandTag{}, nil
	}
	return s.execFunc(ctx, sql, args...)
}

func (s *stubTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if s.queryFunc == nil {
		return nil, errors.New("query not implemented")
	}
	return s.queryFunc(ctx, sql, args...)
}

func (s *stubTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if s.queryRowFunc == nil {
		return stubRow{scan: func(dest ...any) error { return errors.New("query row not implemented") }}
	}
	return s.queryRowFunc(ctx, sql, args...)
}

type stubRows struct {
	data [][]any
	idx  int
	err  error
}

func (r *stubRows) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *stubRows) Scan(dest ...any) error {
	if r.idx == 0 || r.idx > len(r.data) {
		return errors.New("no current row to scan")
	}
	return scanInto(dest, r.data[r.idx-1])
}

func scanInto(dest []any, row []any) error {
	if len(dest) != len(row) {
		return fmt.Errorf("destination length %d does not match row length %d", len(dest), len(row))
	}
	for i, target := range dest {
		switch v := target.(type) {
		case *uint:
			*v = row[i].(uint)
		case *int:
			*v = row[i].(int)
		case *int64:
			*v = row[i].(int64)
		case *bool:
			*v = row[i].(bool)
		case *string:
			*v = row[i].(string)
		case *time.Time:
			*v = row[i].(time.Time)
		case *decimal.NullDecimal:
			*v = row[i].(decimal.NullDecimal)
		case **uint:
			ptr := row[i].(*uint)
			*v = ptr
		default:
			return fmt.Errorf("unsupported scan target %T", target)
		}
	}
	return nil
}

func (r *stubRows) Values() ([]any, error) {
	if r.idx == 0 || r.idx > len(r.data) {
		return nil, errors.New("no current row")
	}
	return r.data[r.idx-1], nil
}

func (r *stubRows) RawValues() [][]byte { return nil }
func (r *stubRows) Err() error          { return r.err }
func (r *stubRows) Close()              {}
func (r *stubRows) CommandTag() pgconn.CommandTag {
	return pgconn.CommandTag{}
}
func (r *stubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *stubRows) Conn() *pgx.Conn                              { return nil }

type stubRow struct {
	scan func(dest ...any) error
}

func (r stubRow) Scan(dest ...any) error {
	if r.scan == nil {
		return errors.New("scan not implemented")
	}
	return r.scan(dest...)
}
