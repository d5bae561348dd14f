package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/mailstock/modules/accounts/domain/aggregates/record"
	"github.com/iota-uz/mailstock/modules/accounts/domain/entities/sourcefile"
	"github.com/iota-uz/mailstock/modules/core/domain/aggregates/user"
	"github.com/iota-uz/mailstock/pkg/composables"
	"github.com/iota-uz/mailstock/pkg/configuration"
	"github.com/iota-uz/mailstock/pkg/excel"
)

// providers broken out in the manager dashboard listing
var dashboardProviders = []string{"gmail", "yahoo", "hotmail"}

type RecordsService struct {
	records record.Repository
	files   sourcefile.Repository
}

func NewRecordsService(records record.Repository, files sourcefile.Repository) *RecordsService {
	return &RecordsService{records: records, files: files}
}

// scopeFor translates the caller's role into the record filter it is allowed
// to touch in a stage. Admins own the admin stage, managers their team's
// manager stage, team leads their own teamlead-stage records.
func scopeFor(u *user.User, stage record.Stage) (*record.FindParams, error) {
	switch {
	case u.IsAdmin && stage == record.StageAdmin:
		return &record.FindParams{Stage: stage}, nil
	case u.Role == user.RoleManager && u.InTeam() && stage == record.StageManager:
		return &record.FindParams{Stage: stage, TeamID: u.TeamID}, nil
	case u.Role == user.RoleTL && u.InTeam() && stage == record.StageTeamLead:
		return &record.FindParams{Stage: stage, TeamID: u.TeamID, AssigneeID: &u.ID}, nil
	case stage == record.StageClosed && (u.IsAdmin || u.Role == user.RoleManager || u.Role == user.RoleTL):
		params := &record.FindParams{Stage: stage}
		if !u.IsAdmin {
			params.TeamID = u.TeamID
		}
		return params, nil
	}
	return nil, newServiceError(http.StatusForbidden, "ACCOUNTS_UNAUTHORIZED", "access denied for this stage", nil)
}

func (s *RecordsService) callerScope(ctx context.Context, stage record.Stage) (*user.User, *record.FindParams, error) {
	u, err := composables.UseUser(ctx)
	if err != nil {
		return nil, nil, newServiceError(http.StatusForbidden, "ACCOUNTS_UNAUTHORIZED", "authentication required", err)
	}
	scope, err := scopeFor(u, stage)
	if err != nil {
		return nil, nil, err
	}
	return u, scope, nil
}

// inScope reports whether a record falls inside the caller's filter.
func inScope(rec *record.Record, scope *record.FindParams) bool {
	if rec.Stage != scope.Stage {
		return false
	}
	if scope.TeamID != nil && (rec.TeamID == nil || *rec.TeamID != *scope.TeamID) {
		return false
	}
	if scope.AssigneeID != nil && (rec.AssigneeID == nil || *rec.AssigneeID != *scope.AssigneeID) {
		return false
	}
	return true
}

type ListQuery struct {
	Page         int
	Limit        int
	SourceFileID *uint
	Status       string
}

type ListResult struct {
	Items          []*record.Record
	Total          int64
	CurrentPage    int
	TotalPages     int
	HasNext        bool
	HasPrev        bool
	ProviderCounts map[string]int64
}

// List returns one page of the caller's records in a stage. Manager listings
// additionally carry per-provider counts for the dashboard.
func (s *RecordsService) List(ctx context.Context, stage record.Stage, query ListQuery) (*ListResult, error) {
	_, scope, err := s.callerScope(ctx, stage)
	if err != nil {
		return nil, err
	}

	scope.SourceFileID = query.SourceFileID
	if query.Status != "" {
		status, ok := record.ParseStatus(query.Status)
		if !ok {
			return nil, newServiceError(http.StatusBadRequest, "ACCOUNTS_INVALID", "invalid status filter", nil)
		}
		scope.Status = status
	}

	total, err := s.records.Count(ctx, scope)
	if err != nil {
		return nil, mapPgErrorToServiceError(err)
	}

	conf := configuration.Use()
	pageSize := query.Limit
	if pageSize < 1 || pageSize > conf.MaxPageSize {
		pageSize = conf.PageSize
	}
	page := query.Page
	if page < 1 {
		page = 1
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages == 0 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}

	scope.Limit = pageSize
	scope.Offset = (page - 1) * pageSize
	items, err := s.records.List(ctx, scope)
	if err != nil {
		return nil, mapPgErrorToServiceError(err)
	}

	result := &ListResult{
		Items:       items,
		Total:       total,
		CurrentPage: page,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}

	if stage == record.StageManager {
		countScope := *scope
		countScope.Limit = 0
		countScope.Offset = 0
		counts, err := s.records.ProviderCounts(ctx, &countScope)
		if err != nil {
			return nil, mapPgErrorToServiceError(err)
		}
		result.ProviderCounts = make(map[string]int64, len(dashboardProviders))
		for _, provider := range dashboardProviders {
			result.ProviderCounts[provider] = counts[provider]
		}
	}
	return result, nil
}

// UpdateStatuses applies per-record status changes within the caller's
// scope. An identifier outside the scope is reported as not found.
func (s *RecordsService) UpdateStatuses(ctx context.Context, stage record.Stage, updates map[uint]string) (int, error) {
	_, scope, err := s.callerScope(ctx, stage)
	if err != nil {
		return 0, err
	}
	if len(updates) == 0 {
		return 0, newServiceError(http.StatusBadRequest, "ACCOUNTS_INVALID", "no status updates provided", nil)
	}

	updated := 0
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		for id, rawStatus := range updates {
			status, ok := record.ParseStatus(rawStatus)
			if !ok {
				return newServiceError(http.StatusBadRequest, "ACCOUNTS_INVALID",
					fmt.Sprintf("invalid status %q", rawStatus), nil)
			}

			rec, err := s.records.GetByID(txCtx, stage, id)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return newServiceError(http.StatusNotFound, "ACCOUNTS_NOT_FOUND",
						fmt.Sprintf("record %d not found", id), err)
				}
				return mapPgErrorToServiceError(err)
			}
			if !inScope(rec, scope) {
				return newServiceError(http.StatusNotFound, "ACCOUNTS_NOT_FOUND",
					fmt.Sprintf("record %d not found", id), nil)
			}

			rec.Status = status
			if err := s.records.Update(txCtx, rec); err != nil {
				return mapPgErrorToServiceError(err)
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

func (s *RecordsService) Delete(ctx context.Context, stage record.Stage, id uint) error {
	_, scope, err := s.callerScope(ctx, stage)
	if err != nil {
		return err
	}

	rec, err := s.records.GetByID(ctx, stage, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return newServiceError(http.StatusNotFound, "ACCOUNTS_NOT_FOUND", "record not found", err)
		}
		return mapPgErrorToServiceError(err)
	}
	if !inScope(rec, scope) {
		return newServiceError(http.StatusNotFound, "ACCOUNTS_NOT_FOUND", "record not found", nil)
	}

	if _, err := s.records.Delete(ctx, stage, id); err != nil {
		return mapPgErrorToServiceError(err)
	}
	return nil
}

func (s *RecordsService) DeleteAll(ctx context.Context, stage record.Stage) (int64, error) {
	_, scope, err := s.callerScope(ctx, stage)
	if err != nil {
		return 0, err
	}
	deleted, err := s.records.DeleteAll(ctx, scope)
	if err != nil {
		return 0, mapPgErrorToServiceError(err)
	}
	return deleted, nil
}

// ---- source file provenance ----

func (s *RecordsService) ListFiles(ctx context.Context) ([]*sourcefile.SourceFile, error) {
	u, err := composables.UseUser(ctx)
	if err != nil || !u.IsAdmin {
		return nil, newServiceError(http.StatusForbidden, "ACCOUNTS_UNAUTHORIZED", "admin access required", err)
	}
	files, err := s.files.List(ctx)
	if err != nil {
		return nil, mapPgErrorToServiceError(err)
	}
	return files, nil
}

// DeleteFile removes a source file together with its admin-stage records.
// Copies propagated to other stages keep their provenance and stay intact.
func (s *RecordsService) DeleteFile(ctx context.Context, id uint) error {
	u, err := composables.UseUser(ctx)
	if err != nil || !u.IsAdmin {
		return newServiceError(http.StatusForbidden, "ACCOUNTS_UNAUTHORIZED", "admin access required", err)
	}
	return composables.InTx(ctx, func(txCtx context.Context) error {
		if _, err := s.records.DeleteAll(txCtx, &record.FindParams{Stage: record.StageAdmin, SourceFileID: &id}); err != nil {
			return mapPgErrorToServiceError(err)
		}
		deleted, err := s.files.Delete(txCtx, id)
		if err != nil {
			return mapPgErrorToServiceError(err)
		}
		if deleted == 0 {
			return newServiceError(http.StatusNotFound, "ACCOUNTS_NOT_FOUND", "file not found", nil)
		}
		return nil
	})
}

// DeleteFileRecords removes a file's admin-stage records but keeps the file.
func (s *RecordsService) DeleteFileRecords(ctx context.Context, id uint) (int64, error) {
	u, err := composables.UseUser(ctx)
	if err != nil || !u.IsAdmin {
		return 0, newServiceError(http.StatusForbidden, "ACCOUNTS_UNAUTHORIZED", "admin access required", err)
	}
	if _, err := s.files.GetByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, newServiceError(http.StatusNotFound, "ACCOUNTS_NOT_FOUND", "file not found", err)
		}
		return 0, mapPgErrorToServiceError(err)
	}
	deleted, err := s.records.DeleteAll(ctx, &record.FindParams{Stage: record.StageAdmin, SourceFileID: &id})
	if err != nil {
		return 0, mapPgErrorToServiceError(err)
	}
	return deleted, nil
}

// ---- team-lead closure sheet ----

type LeadImportResult struct {
	Message string `json:"message"`
	Updated int    `json:"updated"`
	Created int    `json:"created"`
}

// ImportLeadSheet consumes a team lead's closure sheet ("Gmail ID" / "New
// Password" columns): known records get the replacement credential, unknown
// identifiers become minimal records assigned to the caller.
func (s *RecordsService) ImportLeadSheet(ctx context.Context, data []byte, filename string) (*LeadImportResult, error) {
	u, err := composables.UseUser(ctx)
	if err != nil {
		return nil, newServiceError(http.StatusForbidden, "ACCOUNTS_UNAUTHORIZED", "authentication required", err)
	}
	if u.Role != user.RoleTL || !u.InTeam() {
		return nil, newServiceError(http.StatusForbidden, "ACCOUNTS_UNAUTHORIZED", "team lead access required", nil)
	}

	sheet, err := excel.Decode(data, filename)
	if err != nil {
		return nil, newServiceError(http.StatusBadRequest, "ACCOUNTS_UNSUPPORTED_FORMAT", "could not read file: "+filename, err)
	}

	accIdx := colAccountID
	newSecretIdx := colSecret
	if sheet.Headered {
		accIdx = sheet.Column("gmail", "email")
		newSecretIdx = sheet.Column("new_password", "new pass", "pass")
	}

	updated := 0
	created := 0
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		for _, row := range sheet.Rows {
			accountID := row.Cell(accIdx)
			if accountID == "" {
				continue
			}
			newSecret := row.Cell(newSecretIdx)

			rec, err := s.records.GetByAccountID(txCtx, record.StageTeamLead, accountID)
			if err != nil {
				if !errors.Is(err, pgx.ErrNoRows) {
					return mapPgErrorToServiceError(err)
				}
				rec = &record.Record{
					Stage:      record.StageTeamLead,
					AccountID:  accountID,
					Provider:   record.InferProvider(accountID),
					Status:     record.StatusWorking,
					NewSecret:  newSecret,
					TeamID:     u.TeamID,
					AssigneeID: &u.ID,
				}
				if err := s.records.Create(txCtx, rec); err != nil {
					return mapPgErrorToServiceError(err)
				}
				created++
				continue
			}

			if rec.AssigneeID == nil || *rec.AssigneeID != u.ID {
				continue
			}
			if rec.NewSecret == newSecret {
				continue
			}
			rec.NewSecret = newSecret
			if err := s.records.Update(txCtx, rec); err != nil {
				return mapPgErrorToServiceError(err)
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &LeadImportResult{
		Message: fmt.Sprintf("%d emails updated, %d created", updated, created),
		Updated: updated,
		Created: created,
	}, nil
}
