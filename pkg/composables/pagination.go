package composables

import (
	"net/http"
	"strconv"

	"github.com/iota-uz/mailstock/pkg/configuration"
)

type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// UsePaginated extracts page/limit query parameters, clamping limit to the
// configured maximum. Pages are 1-based.
func UsePaginated(r *http.Request) PaginationParams {
	conf := configuration.Use()

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 {
		limit = conf.PageSize
	}
	if limit > conf.MaxPageSize {
		limit = conf.MaxPageSize
	}
	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}
