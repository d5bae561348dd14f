package persistence

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/mailstock/modules/core/domain/aggregates/user"
	"github.com/iota-uz/mailstock/pkg/constants"
)

func userRow(id uint, username, role string, teamID *uint, affinity *string) []any {
	return []any{id, username, "$2a$10$hash", false, role, teamID, affinity, time.Now()}
}

func TestUserRepository_GetByUsername(t *testing.T) {
	repo := NewUserRepository()
	affinity := "gmail"
	teamID := uint(1)

	tx := &stubTx{
		queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			require.Contains(t, sql, "WHERE username = $1")
			require.Equal(t, []any{"lead1"}, args)
			return stubRow{scan: func(dest ...any) error {
				return scanInto(dest, userRow(3, "lead1", "tl", &teamID, &affinity))
			}}
		},
	}
	ctx := context.WithValue(context.Background(), constants.TxKey, tx)

	u, err := repo.GetByUsername(ctx, "lead1")
	require.NoError(t, err)
	require.Equal(t, uint(3), u.ID)
	require.Equal(t, user.RoleTL, u.Role)
	require.Equal(t, "gmail", u.ProviderAffinity)
	require.Equal(t, teamID, *u.TeamID)
}

func TestUserRepository_ListFilters(t *testing.T) {
	repo := NewUserRepository()
	teamID := uint(2)

	var captured string
	tx := &stubTx{
		queryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			captured = sql
			require.Equal(t, []any{uint(2), "tl"}, args)
			return &stubRows{data: [][]any{
				userRow(5, "lead1", "tl", &teamID, nil),
			}}, nil
		},
	}
	ctx := context.WithValue(context.Background(), constants.TxKey, tx)

	users, err := repo.List(ctx, &user.FindParams{TeamID: &teamID, Role: user.RoleTL})
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Contains(t, captured, "team_id = $1")
	require.Contains(t, captured, "role = $2")
	require.Equal(t, "", users[0].ProviderAffinity)
}

func TestUserRepository_Create(t *testing.T) {
	repo := NewUserRepository()

	tx := &stubTx{
		queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			require.Contains(t, sql, "INSERT INTO users")
			require.Len(t, args, 6)
			require.Equal(t, "lead1", args[0])
			// empty affinity is stored as NULL
			require.Nil(t, args[5])
			return stubRow{scan: func(dest ...any) error {
				*(dest[0].(*uint)) = 11
				*(dest[1].(*time.Time)) = time.Now()
				return nil
			}}
		},
	}
	ctx := context.WithValue(context.Background(), constants.TxKey, tx)

	u := &user.User{Username: "lead1", PasswordHash: "h", Role: user.RoleTL}
	require.NoError(t, repo.Create(ctx, u))
	require.Equal(t, uint(11), u.ID)
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
		case *bool:
			*v = row[i].(bool)
		case *string:
			*v = row[i].(string)
		case *time.Time:
			*v = row[i].(time.Time)
		case **uint:
			ptr := row[i].(*uint)
			*v = ptr
		case **string:
			ptr := row[i].(*string)
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
