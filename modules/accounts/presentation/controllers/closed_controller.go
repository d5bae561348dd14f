package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/mailstock/modules/accounts/domain/aggregates/record"
	"github.com/iota-uz/mailstock/modules/accounts/services"
	"github.com/iota-uz/mailstock/pkg/application"
	"github.com/iota-uz/mailstock/pkg/excel"
	"github.com/iota-uz/mailstock/pkg/httpapi"
	"github.com/iota-uz/mailstock/pkg/middleware"
)

type ClosedController struct {
	app         application.Application
	propagation *services.PropagationService
	records     *services.RecordsService
}

func NewClosedController(app application.Application) application.Controller {
	return &ClosedController{
		app:         app,
		propagation: app.Service(services.PropagationService{}).(*services.PropagationService),
		records:     app.Service(services.RecordsService{}).(*services.RecordsService),
	}
}

func (c *ClosedController) Key() string {
	return "/api/closed"
}

func (c *ClosedController) Register(r *mux.Router) {
	api := r.PathPrefix("/api/closed").Subrouter()
	api.Use(middleware.RequireAuthenticated())

	api.HandleFunc("/imports", c.Import).Methods(http.MethodPost)
	api.HandleFunc("/records", c.ListRecords).Methods(http.MethodGet)
	api.HandleFunc("/records/{id:[0-9]+}", c.DeleteRecord).Methods(http.MethodDelete)
}

// Import takes a closure spreadsheet and upserts its rows into the closed
// stage with pending_closed status.
func (c *ClosedController) Import(w http.ResponseWriter, r *http.Request) {
	data, filename, ok := readSingleUpload(w, r)
	if !ok {
		return
	}

	sheet, err := excel.Decode(data, filename)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "ACCOUNTS_UNSUPPORTED_FORMAT", "could not read file: "+filename, nil)
		return
	}

	result, err := c.propagation.UpsertClosed(r.Context(), closedRowsFromSheet(sheet))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// closedRowsFromSheet maps a closure sheet onto upsert rows. Headerless
// sheets follow the fixed column order: identifier, current credential,
// recovery contact, replacement credential.
func closedRowsFromSheet(sheet *excel.Sheet) []services.ClosedRow {
	accIdx, secretIdx, recoveryIdx, newSecretIdx := 0, 1, 2, 3
	if sheet.Headered {
		accIdx = sheet.Column("gmail", "email")
		newSecretIdx = sheet.Column("new_password", "new pass")
		recoveryIdx = sheet.Column("recover")
		secretIdx = sheet.Column("password", "pass")
		if secretIdx == newSecretIdx {
			secretIdx = -1
		}
	}

	rows := make([]services.ClosedRow, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		rows = append(rows, services.ClosedRow{
			AccountID:       row.Cell(accIdx),
			Secret:          row.Cell(secretIdx),
			RecoveryContact: row.Cell(recoveryIdx),
			NewSecret:       row.Cell(newSecretIdx),
		})
	}
	return rows
}

func (c *ClosedController) ListRecords(w http.ResponseWriter, r *http.Request) {
	result, err := c.records.List(r.Context(), record.StageClosed, listQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writePaginated(w, result)
}

func (c *ClosedController) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	handleDelete(w, r, c.records, record.StageClosed)
}
