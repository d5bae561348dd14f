package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/iota-uz/mailstock/modules/accounts/domain/aggregates/record"
	"github.com/iota-uz/mailstock/modules/accounts/presentation/controllers/dtos"
	"github.com/iota-uz/mailstock/modules/accounts/services"
	"github.com/iota-uz/mailstock/pkg/composables"
	"github.com/iota-uz/mailstock/pkg/httpapi"
)

func decodeJSON(body io.ReadCloser, out any) error {
	defer func() { _ = body.Close() }()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func writeJSON[T any](w http.ResponseWriter, status int, payload T) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	var svcErr *services.ServiceError
	if errors.As(err, &svcErr) {
		_ = httpapi.WriteError(w, svcErr.Status, svcErr.Code, svcErr.Message, nil)
		return
	}
	_ = httpapi.WriteError(w, http.StatusInternalServerError, "ACCOUNTS_INTERNAL", err.Error(), nil)
}

func pathID(r *http.Request) (uint, bool) {
	raw, ok := mux.Vars(r)["id"]
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

type listFilters struct {
	Status   string `form:"status"`
	SearchID uint   `form:"search_id"`
}

// listQuery parses the shared pagination and filter params of stage listings.
func listQuery(r *http.Request) services.ListQuery {
	paginated := composables.UsePaginated(r)
	query := services.ListQuery{Page: paginated.Page, Limit: paginated.Limit}
	filters, err := composables.UseQuery(&listFilters{}, r)
	if err != nil {
		return query
	}
	query.Status = filters.Status
	if filters.SearchID != 0 {
		id := filters.SearchID
		query.SourceFileID = &id
	}
	return query
}

func writePaginated(w http.ResponseWriter, result *services.ListResult) {
	writeJSON(w, http.StatusOK, dtos.PaginatedRecords{
		Items:          dtos.FromRecords(result.Items),
		Total:          result.Total,
		CurrentPage:    result.CurrentPage,
		TotalPages:     result.TotalPages,
		HasNext:        result.HasNext,
		HasPrev:        result.HasPrev,
		ProviderCounts: result.ProviderCounts,
	})
}

// statusUpdates is the request body of the per-stage status endpoints.
type statusUpdates struct {
	Statuses map[uint]string `json:"statuses"`
}

func handleStatusUpdate(w http.ResponseWriter, r *http.Request, recordsService *services.RecordsService, stage record.Stage) {
	var req statusUpdates
	if err := decodeJSON(r.Body, &req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "ACCOUNTS_INVALID", "invalid request body", nil)
		return
	}
	updated, err := recordsService.UpdateStatuses(r.Context(), stage, req.Statuses)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "statuses updated",
		"updated": updated,
	})
}

func handleDelete(w http.ResponseWriter, r *http.Request, recordsService *services.RecordsService, stage record.Stage) {
	id, ok := pathID(r)
	if !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "ACCOUNTS_INVALID", "invalid record id", nil)
		return
	}
	if err := recordsService.Delete(r.Context(), stage, id); err != nil {
		writeServiceError(w, err)
		return
	}
	_ = httpapi.WriteMessage(w, http.StatusOK, "record deleted")
}

func handleDeleteAll(w http.ResponseWriter, r *http.Request, recordsService *services.RecordsService, stage record.Stage) {
	deleted, err := recordsService.DeleteAll(r.Context(), stage)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "records deleted",
		"deleted": deleted,
	})
}

func writeExport(w http.ResponseWriter, file *services.ExportFile) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}
