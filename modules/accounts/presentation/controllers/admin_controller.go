package controllers

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/mailstock/modules/accounts/domain/aggregates/record"
	"github.com/iota-uz/mailstock/modules/accounts/presentation/controllers/dtos"
	"github.com/iota-uz/mailstock/modules/accounts/services"
	"github.com/iota-uz/mailstock/pkg/application"
	"github.com/iota-uz/mailstock/pkg/configuration"
	"github.com/iota-uz/mailstock/pkg/httpapi"
	"github.com/iota-uz/mailstock/pkg/middleware"
)

type AdminController struct {
	app         application.Application
	imports     *services.ImportService
	propagation *services.PropagationService
	records     *services.RecordsService
}

func NewAdminController(app application.Application) application.Controller {
	return &AdminController{
		app:         app,
		imports:     app.Service(services.ImportService{}).(*services.ImportService),
		propagation: app.Service(services.PropagationService{}).(*services.PropagationService),
		records:     app.Service(services.RecordsService{}).(*services.RecordsService),
	}
}

func (c *AdminController) Key() string {
	return "/api/admin"
}

func (c *AdminController) Register(r *mux.Router) {
	api := r.PathPrefix("/api/admin").Subrouter()
	api.Use(middleware.RequireAuthenticated())

	api.HandleFunc("/imports", c.Import).Methods(http.MethodPost)
	api.HandleFunc("/records", c.ListRecords).Methods(http.MethodGet)
	api.HandleFunc("/records", c.DeleteAllRecords).Methods(http.MethodDelete)
	api.HandleFunc("/records/assign-team", c.AssignTeam).Methods(http.MethodPost)
	api.HandleFunc("/records/{id:[0-9]+}", c.DeleteRecord).Methods(http.MethodDelete)
	api.HandleFunc("/files", c.ListFiles).Methods(http.MethodGet)
	api.HandleFunc("/files/{id:[0-9]+}", c.DeleteFile).Methods(http.MethodDelete)
	api.HandleFunc("/files/{id:[0-9]+}/records", c.DeleteFileRecords).Methods(http.MethodDelete)
}

func (c *AdminController) Import(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()
	r.Body = http.MaxBytesReader(w, r.Body, conf.MaxUploadSize)
	if err := r.ParseMultipartForm(conf.MaxUploadMemory); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "ACCOUNTS_INVALID", "invalid multipart request", nil)
		return
	}
	defer func() {
		// drop spooled temp files regardless of outcome
		_ = r.MultipartForm.RemoveAll()
	}()

	fileHeaders := r.MultipartForm.File["excel_files"]
	if len(fileHeaders) == 0 {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "ACCOUNTS_INVALID", "no files uploaded", nil)
		return
	}
	fileIDs := r.MultipartForm.Value["file_ids[]"]
	sources := r.MultipartForm.Value["sources[]"]

	uploads := make([]*services.UploadedFile, 0, len(fileHeaders))
	for i, header := range fileHeaders {
		f, err := header.Open()
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "ACCOUNTS_INVALID", "could not read upload: "+header.Filename, nil)
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "ACCOUNTS_INVALID", "could not read upload: "+header.Filename, nil)
			return
		}

		upload := &services.UploadedFile{FileName: header.Filename, Data: data}
		if i < len(fileIDs) {
			upload.FileID = fileIDs[i]
		}
		if i < len(sources) {
			upload.Source = sources[i]
		}
		uploads = append(uploads, upload)
	}

	summary, err := c.imports.ImportBatch(r.Context(), uploads)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (c *AdminController) ListRecords(w http.ResponseWriter, r *http.Request) {
	result, err := c.records.List(r.Context(), record.StageAdmin, listQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writePaginated(w, result)
}

type assignTeamRequest struct {
	Team      string `json:"team"`
	RecordIDs []uint `json:"record_ids"`
}

func (c *AdminController) AssignTeam(w http.ResponseWriter, r *http.Request) {
	var req assignTeamRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "ACCOUNTS_INVALID", "invalid request body", nil)
		return
	}
	result, err := c.propagation.AssignToTeam(r.Context(), req.Team, req.RecordIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (c *AdminController) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	handleDelete(w, r, c.records, record.StageAdmin)
}

func (c *AdminController) DeleteAllRecords(w http.ResponseWriter, r *http.Request) {
	handleDeleteAll(w, r, c.records, record.StageAdmin)
}

func (c *AdminController) ListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := c.records.ListFiles(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]dtos.SourceFileDTO, 0, len(files))
	for _, f := range files {
		out = append(out, dtos.FromSourceFile(f))
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *AdminController) DeleteFile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "ACCOUNTS_INVALID", "invalid file id", nil)
		return
	}
	if err := c.records.DeleteFile(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	_ = httpapi.WriteMessage(w, http.StatusOK, "file and its records deleted")
}

func (c *AdminController) DeleteFileRecords(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "ACCOUNTS_INVALID", "invalid file id", nil)
		return
	}
	deleted, err := c.records.DeleteFileRecords(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "file records deleted",
		"deleted": deleted,
	})
}
