package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iota-uz/mailstock/modules/accounts/domain/aggregates/record"
	"github.com/iota-uz/mailstock/modules/accounts/domain/entities/sourcefile"
	"github.com/iota-uz/mailstock/modules/core/domain/aggregates/user"
	"github.com/iota-uz/mailstock/modules/core/domain/entities/team"
	"github.com/iota-uz/mailstock/pkg/composables"
	"github.com/iota-uz/mailstock/pkg/constants"
	"github.com/iota-uz/mailstock/pkg/eventbus"

	"github.com/sirupsen/logrus"
)

// serviceContext builds the context services expect: an authenticated user
// plus an ambient transaction so transactional helpers run against the mock
// repositories instead of a pool.
func serviceContext(u *user.User) context.Context {
	ctx := context.WithValue(context.Background(), constants.TxKey, noopTx{})
	return composables.WithUser(ctx, u)
}

func testPublisher() eventbus.EventBus {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return eventbus.NewEventPublisher(log)
}

type noopTx struct{}

func (noopTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("exec not expected")
}

func (noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("query not expected")
}

func (noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return noopRow{}
}

type noopRow struct{}

func (noopRow) Scan(dest ...any) error { return errors.New("scan not expected") }

type memRecordRepo struct {
	nextID  uint
	records []*record.Record
}

func newMemRecordRepo(seed ...*record.Record) *memRecordRepo {
	repo := &memRecordRepo{}
	for _, rec := range seed {
		clone := *rec
		repo.nextID++
		clone.ID = repo.nextID
		repo.records = append(repo.records, &clone)
	}
	return repo
}

func (m *memRecordRepo) matches(rec *record.Record, params *record.FindParams) bool {
	if params == nil {
		return true
	}
	if params.Stage != "" && rec.Stage != params.Stage {
		return false
	}
	if len(params.IDs) > 0 {
		found := false
		for _, id := range params.IDs {
			if rec.ID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(params.AccountIDs) > 0 {
		found := false
		for _, accountID := range params.AccountIDs {
			if rec.AccountID == accountID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if params.TeamID != nil && (rec.TeamID == nil || *rec.TeamID != *params.TeamID) {
		return false
	}
	if params.AssigneeID != nil && (rec.AssigneeID == nil || *rec.AssigneeID != *params.AssigneeID) {
		return false
	}
	if params.SourceFileID != nil && (rec.SourceFileID == nil || *rec.SourceFileID != *params.SourceFileID) {
		return false
	}
	if params.Status != "" && rec.Status != params.Status {
		return false
	}
	if params.Distributed != nil && rec.IsDistributed != *params.Distributed {
		return false
	}
	return true
}

func (m *memRecordRepo) GetByID(ctx context.Context, stage record.Stage, id uint) (*record.Record, error) {
	for _, rec := range m.records {
		if rec.Stage == stage && rec.ID == id {
			clone := *rec
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memRecordRepo) GetByAccountID(ctx context.Context, stage record.Stage, accountID string) (*record.Record, error) {
	for _, rec := range m.records {
		if rec.Stage == stage && rec.AccountID == accountID {
			clone := *rec
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memRecordRepo) List(ctx context.Context, params *record.FindParams) ([]*record.Record, error) {
	var results []*record.Record
	for _, rec := range m.records {
		if m.matches(rec, params) {
			clone := *rec
			results = append(results, &clone)
		}
	}
	if params != nil && params.Offset > 0 {
		if params.Offset >= len(results) {
			return nil, nil
		}
		results = results[params.Offset:]
	}
	if params != nil && params.Limit > 0 && len(results) > params.Limit {
		results = results[:params.Limit]
	}
	return results, nil
}

func (m *memRecordRepo) Count(ctx context.Context, params *record.FindParams) (int64, error) {
	var count int64
	for _, rec := range m.records {
		if m.matches(rec, params) {
			count++
		}
	}
	return count, nil
}

func (m *memRecordRepo) Exists(ctx context.Context, stage record.Stage, accountID string) (bool, error) {
	_, err := m.GetByAccountID(ctx, stage, accountID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (m *memRecordRepo) ExistingAccountIDs(ctx context.Context, stage record.Stage, accountIDs []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	for _, accountID := range accountIDs {
		for _, rec := range m.records {
			if rec.Stage == stage && rec.AccountID == accountID {
				existing[accountID] = true
			}
		}
	}
	return existing, nil
}

func (m *memRecordRepo) ProviderCounts(ctx context.Context, params *record.FindParams) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, rec := range m.records {
		if m.matches(rec, params) {
			counts[rec.Provider]++
		}
	}
	return counts, nil
}

func (m *memRecordRepo) Create(ctx context.Context, rec *record.Record) error {
	for _, existing := range m.records {
		if existing.Stage == rec.Stage && existing.AccountID == rec.AccountID {
			return &pgconn.PgError{Code: "23505", ConstraintName: "records_stage_account_id_key"}
		}
	}
	m.nextID++
	rec.ID = m.nextID
	clone := *rec
	m.records = append(m.records, &clone)
	return nil
}

func (m *memRecordRepo) Update(ctx context.Context, rec *record.Record) error {
	for i, existing := range m.records {
		if existing.ID == rec.ID {
			clone := *rec
			m.records[i] = &clone
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *memRecordRepo) SetDistributed(ctx context.Context, id uint, distributed bool) error {
	for _, rec := range m.records {
		if rec.ID == id {
			rec.IsDistributed = distributed
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *memRecordRepo) Delete(ctx context.Context, stage record.Stage, id uint) (int64, error) {
	for i, rec := range m.records {
		if rec.Stage == stage && rec.ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (m *memRecordRepo) DeleteAll(ctx context.Context, params *record.FindParams) (int64, error) {
	var kept []*record.Record
	var deleted int64
	for _, rec := range m.records {
		if m.matches(rec, params) {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	m.records = kept
	return deleted, nil
}

func (m *memRecordRepo) mustGet(stage record.Stage, accountID string) *record.Record {
	for _, rec := range m.records {
		if rec.Stage == stage && rec.AccountID == accountID {
			return rec
		}
	}
	return nil
}

type memSourceFileRepo struct {
	nextID uint
	files  []*sourcefile.SourceFile
}

func (m *memSourceFileRepo) GetByID(ctx context.Context, id uint) (*sourcefile.SourceFile, error) {
	for _, f := range m.files {
		if f.ID == id {
			clone := *f
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memSourceFileRepo) List(ctx context.Context) ([]*sourcefile.SourceFile, error) {
	results := make([]*sourcefile.SourceFile, 0, len(m.files))
	for _, f := range m.files {
		clone := *f
		results = append(results, &clone)
	}
	return results, nil
}

func (m *memSourceFileRepo) Create(ctx context.Context, f *sourcefile.SourceFile) error {
	m.nextID++
	f.ID = m.nextID
	clone := *f
	m.files = append(m.files, &clone)
	return nil
}

func (m *memSourceFileRepo) SetCount(ctx context.Context, id uint, count int) error {
	for _, f := range m.files {
		if f.ID == id {
			f.Count = count
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *memSourceFileRepo) Delete(ctx context.Context, id uint) (int64, error) {
	for i, f := range m.files {
		if f.ID == id {
			m.files = append(m.files[:i], m.files[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

type memTeamRepo struct {
	nextID uint
	teams  []*team.Team
}

func (m *memTeamRepo) GetAll(ctx context.Context) ([]*team.Team, error) {
	return m.teams, nil
}

func (m *memTeamRepo) GetByID(ctx context.Context, id uint) (*team.Team, error) {
	for _, t := range m.teams {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memTeamRepo) GetByName(ctx context.Context, name string) (*team.Team, error) {
	for _, t := range m.teams {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memTeamRepo) GetOrCreateByName(ctx context.Context, name string) (*team.Team, error) {
	if t, err := m.GetByName(ctx, name); err == nil {
		return t, nil
	}
	m.nextID++
	t := &team.Team{ID: m.nextID, Name: name}
	m.teams = append(m.teams, t)
	return t, nil
}

type memUserRepo struct {
	nextID uint
	users  []*user.User
}

func (m *memUserRepo) GetByID(ctx context.Context, id uint) (*user.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUserRepo) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUserRepo) List(ctx context.Context, params *user.FindParams) ([]*user.User, error) {
	var results []*user.User
	for _, u := range m.users {
		if params != nil {
			if params.TeamID != nil && (u.TeamID == nil || *u.TeamID != *params.TeamID) {
				continue
			}
			if params.Role != "" && u.Role != params.Role {
				continue
			}
		}
		results = append(results, u)
	}
	return results, nil
}

func (m *memUserRepo) Create(ctx context.Context, u *user.User) error {
	m.nextID++
	u.ID = m.nextID
	m.users = append(m.users, u)
	return nil
}

func (m *memUserRepo) Update(ctx context.Context, u *user.User) error {
	for i, existing := range m.users {
		if existing.ID == u.ID {
			m.users[i] = u
			return nil
		}
	}
	return pgx.ErrNoRows
}
