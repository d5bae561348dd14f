package controllers

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/mailstock/modules/accounts/domain/aggregates/record"
	"github.com/iota-uz/mailstock/modules/accounts/services"
	"github.com/iota-uz/mailstock/pkg/application"
	"github.com/iota-uz/mailstock/pkg/configuration"
	"github.com/iota-uz/mailstock/pkg/httpapi"
	"github.com/iota-uz/mailstock/pkg/middleware"
)

type LeadController struct {
	app     application.Application
	records *services.RecordsService
	exports *services.ExportService
}

func NewLeadController(app application.Application) application.Controller {
	return &LeadController{
		app:     app,
		records: app.Service(services.RecordsService{}).(*services.RecordsService),
		exports: app.Service(services.ExportService{}).(*services.ExportService),
	}
}

func (c *LeadController) Key() string {
	return "/api/lead"
}

func (c *LeadController) Register(r *mux.Router) {
	api := r.PathPrefix("/api/lead").Subrouter()
	api.Use(middleware.RequireAuthenticated())

	api.HandleFunc("/records", c.ListRecords).Methods(http.MethodGet)
	api.HandleFunc("/records", c.DeleteAllRecords).Methods(http.MethodDelete)
	api.HandleFunc("/records/statuses", c.UpdateStatuses).Methods(http.MethodPost)
	api.HandleFunc("/records/{id:[0-9]+}", c.DeleteRecord).Methods(http.MethodDelete)
	api.HandleFunc("/imports", c.ImportSheet).Methods(http.MethodPost)
	api.HandleFunc("/export", c.Export).Methods(http.MethodGet)
}

func (c *LeadController) ListRecords(w http.ResponseWriter, r *http.Request) {
	result, err := c.records.List(r.Context(), record.StageTeamLead, listQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writePaginated(w, result)
}

func (c *LeadController) UpdateStatuses(w http.ResponseWriter, r *http.Request) {
	handleStatusUpdate(w, r, c.records, record.StageTeamLead)
}

func (c *LeadController) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	handleDelete(w, r, c.records, record.StageTeamLead)
}

func (c *LeadController) DeleteAllRecords(w http.ResponseWriter, r *http.Request) {
	handleDeleteAll(w, r, c.records, record.StageTeamLead)
}

// ImportSheet takes a closure sheet with replacement credentials and applies
// it to the caller's teamlead-stage records.
func (c *LeadController) ImportSheet(w http.ResponseWriter, r *http.Request) {
	data, filename, ok := readSingleUpload(w, r)
	if !ok {
		return
	}
	result, err := c.records.ImportLeadSheet(r.Context(), data, filename)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (c *LeadController) Export(w http.ResponseWriter, r *http.Request) {
	file, err := c.exports.ExportLead(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeExport(w, file)
}

// readSingleUpload extracts the one "excel_file" part of a multipart upload.
func readSingleUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	conf := configuration.Use()
	r.Body = http.MaxBytesReader(w, r.Body, conf.MaxUploadSize)
	if err := r.ParseMultipartForm(conf.MaxUploadMemory); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "ACCOUNTS_INVALID", "invalid multipart request", nil)
		return nil, "", false
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	f, header, err := r.FormFile("excel_file")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "ACCOUNTS_INVALID", "no file uploaded", nil)
		return nil, "", false
	}
	defer func() {
		_ = f.Close()
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "ACCOUNTS_INVALID", "could not read upload: "+header.Filename, nil)
		return nil, "", false
	}
	return data, header.Filename, true
}
