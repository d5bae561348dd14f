package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/mailstock/modules/accounts/domain/aggregates/record"
	"github.com/iota-uz/mailstock/modules/accounts/services"
	"github.com/iota-uz/mailstock/pkg/application"
	"github.com/iota-uz/mailstock/pkg/middleware"
)

type TeamController struct {
	app         application.Application
	propagation *services.PropagationService
	records     *services.RecordsService
	exports     *services.ExportService
}

func NewTeamController(app application.Application) application.Controller {
	return &TeamController{
		app:         app,
		propagation: app.Service(services.PropagationService{}).(*services.PropagationService),
		records:     app.Service(services.RecordsService{}).(*services.RecordsService),
		exports:     app.Service(services.ExportService{}).(*services.ExportService),
	}
}

func (c *TeamController) Key() string {
	return "/api/team"
}

func (c *TeamController) Register(r *mux.Router) {
	api := r.PathPrefix("/api/team").Subrouter()
	api.Use(middleware.RequireAuthenticated())

	api.HandleFunc("/records", c.ListRecords).Methods(http.MethodGet)
	api.HandleFunc("/records", c.DeleteAllRecords).Methods(http.MethodDelete)
	api.HandleFunc("/records/statuses", c.UpdateStatuses).Methods(http.MethodPost)
	api.HandleFunc("/records/{id:[0-9]+}", c.DeleteRecord).Methods(http.MethodDelete)
	api.HandleFunc("/distribute", c.Distribute).Methods(http.MethodPost)
	api.HandleFunc("/export", c.Export).Methods(http.MethodGet)
}

func (c *TeamController) ListRecords(w http.ResponseWriter, r *http.Request) {
	result, err := c.records.List(r.Context(), record.StageManager, listQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writePaginated(w, result)
}

func (c *TeamController) UpdateStatuses(w http.ResponseWriter, r *http.Request) {
	handleStatusUpdate(w, r, c.records, record.StageManager)
}

func (c *TeamController) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	handleDelete(w, r, c.records, record.StageManager)
}

func (c *TeamController) DeleteAllRecords(w http.ResponseWriter, r *http.Request) {
	handleDeleteAll(w, r, c.records, record.StageManager)
}

func (c *TeamController) Distribute(w http.ResponseWriter, r *http.Request) {
	result, err := c.propagation.DistributeToLeads(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (c *TeamController) Export(w http.ResponseWriter, r *http.Request) {
	file, err := c.exports.ExportTeam(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeExport(w, file)
}
