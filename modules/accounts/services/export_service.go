package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/iota-uz/mailstock/modules/accounts/domain/aggregates/record"
	"github.com/iota-uz/mailstock/modules/core/domain/aggregates/user"
	"github.com/iota-uz/mailstock/pkg/composables"
	"github.com/iota-uz/mailstock/pkg/excel"
)

var (
	teamExportHeaders = []string{"Gmail ID", "Password", "Recovery Email", "Provider", "Price (DH)", "Status"}
	teamExportWidths  = []float64{25, 20, 30, 15, 10, 12}

	leadExportHeaders = []string{"Gmail ID", "Password", "Recovery Email", "Provider", "New Password", "Status"}
	leadExportWidths  = []float64{25, 20, 30, 15, 20, 12}
)

type ExportFile struct {
	FileName string
	Data     []byte
}

type ExportService struct {
	records record.Repository
}

func NewExportService(records record.Repository) *ExportService {
	return &ExportService{records: records}
}

// ExportTeam renders the caller's manager-stage records as a spreadsheet.
func (s *ExportService) ExportTeam(ctx context.Context) (*ExportFile, error) {
	u, err := composables.UseUser(ctx)
	if err != nil {
		return nil, newServiceError(http.StatusForbidden, "ACCOUNTS_UNAUTHORIZED", "authentication required", err)
	}
	if u.Role != user.RoleManager || !u.InTeam() {
		return nil, newServiceError(http.StatusForbidden, "ACCOUNTS_UNAUTHORIZED", "manager access required", nil)
	}

	records, err := s.records.List(ctx, &record.FindParams{Stage: record.StageManager, TeamID: u.TeamID})
	if err != nil {
		return nil, mapPgErrorToServiceError(err)
	}
	if len(records) == 0 {
		return nil, newServiceError(http.StatusBadRequest, "ACCOUNTS_INVALID", "no emails to export", nil)
	}

	rows := make([][]interface{}, 0, len(records))
	for _, rec := range records {
		price := ""
		if rec.Price != nil {
			price = rec.Price.String()
		}
		rows = append(rows, []interface{}{
			rec.AccountID, rec.Secret, rec.RecoveryContact, rec.Provider, price, string(rec.Status),
		})
	}

	return s.export(ctx, "team_emails", teamExportHeaders, teamExportWidths, rows)
}

// ExportLead renders the caller's teamlead-stage records as a spreadsheet.
func (s *ExportService) ExportLead(ctx context.Context) (*ExportFile, error) {
	u, err := composables.UseUser(ctx)
	if err != nil {
		return nil, newServiceError(http.StatusForbidden, "ACCOUNTS_UNAUTHORIZED", "authentication required", err)
	}
	if u.Role != user.RoleTL || !u.InTeam() {
		return nil, newServiceError(http.StatusForbidden, "ACCOUNTS_UNAUTHORIZED", "team lead access required", nil)
	}

	records, err := s.records.List(ctx, &record.FindParams{
		Stage:      record.StageTeamLead,
		TeamID:     u.TeamID,
		AssigneeID: &u.ID,
	})
	if err != nil {
		return nil, mapPgErrorToServiceError(err)
	}
	if len(records) == 0 {
		return nil, newServiceError(http.StatusBadRequest, "ACCOUNTS_INVALID", "no emails to export", nil)
	}

	rows := make([][]interface{}, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []interface{}{
			rec.AccountID, rec.Secret, rec.RecoveryContact, rec.Provider, rec.NewSecret, string(rec.Status),
		})
	}

	return s.export(ctx, "lead_emails", leadExportHeaders, leadExportWidths, rows)
}

func (s *ExportService) export(ctx context.Context, prefix string, headers []string, widths []float64, rows [][]interface{}) (*ExportFile, error) {
	datasource := excel.NewSliceDataSource("Records", headers, widths, rows)
	data, err := excel.NewExcelExporter(nil).Export(ctx, datasource)
	if err != nil {
		return nil, newServiceError(http.StatusInternalServerError, "ACCOUNTS_INTERNAL", "failed to build export", err)
	}
	return &ExportFile{
		FileName: fmt.Sprintf("%s_%s.xlsx", prefix, time.Now().Format("20060102_150405")),
		Data:     data,
	}, nil
}
