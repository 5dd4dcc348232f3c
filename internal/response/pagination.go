package response

import (
	"net/http"
	"strconv"

	"jobmatchhub/internal/models"
)

// ParsePagination extracts pagination parameters from the request query
// string and applies the model defaults and caps.
func ParsePagination(r *http.Request) models.PaginationParams {
	query := r.URL.Query()

	params := models.PaginationParams{
		Sort:  query.Get("sort"),
		Order: query.Get("order"),
	}

	if page, err := strconv.Atoi(query.Get("page")); err == nil {
		params.Page = page
	}
	if pageSize, err := strconv.Atoi(query.Get("page_size")); err == nil {
		params.PageSize = pageSize
	}

	params.Normalize()
	return params
}
