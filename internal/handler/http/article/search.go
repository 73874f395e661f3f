package article

import (
	"net/http"
	"strconv"
	"time"

	"github.com/myki-jim/newssys-sub000/internal/common/pagination"
	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
	"github.com/myki-jim/newssys-sub000/internal/handler/http/respond"
	"github.com/myki-jim/newssys-sub000/internal/repository"
)

// SearchHandler handles GET /articles: offset-paginated, filtered article
// search joined with the owning source's name.
type SearchHandler struct {
	Articles      repository.ArticleRepository
	PaginationCfg pagination.Config
}

func (h SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	params, err := pagination.ParseQueryParams(r, h.PaginationCfg)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	filters, err := parseFilters(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	offset := pagination.CalculateOffset(params.Page, params.Limit)
	rows, total, err := h.Articles.ListWithSourcePaginated(r.Context(), filters, offset, params.Limit)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]DTO, len(rows))
	for i, row := range rows {
		out[i] = toDTOWithSource(row)
	}
	meta := pagination.Metadata{
		Total: int64(total), Page: params.Page, Limit: params.Limit,
		TotalPages: pagination.CalculateTotalPages(int64(total), params.Limit),
	}
	respond.JSON(w, http.StatusOK, pagination.NewResponse(out, meta))
}

func parseFilters(r *http.Request) (repository.ArticleSearchFilters, error) {
	q := r.URL.Query()
	var filters repository.ArticleSearchFilters

	if v := q.Get("source_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filters, err
		}
		filters.SourceID = &id
	}
	if v := q.Get("status"); v != "" {
		s := entity.ArticleStatus(v)
		filters.Status = &s
	}
	if v := q.Get("fetch_status"); v != "" {
		s := entity.FetchStatus(v)
		filters.FetchStatus = &s
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filters, err
		}
		filters.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filters, err
		}
		filters.To = &t
	}
	if v := q.Get("keyword"); v != "" {
		filters.Keyword = &v
	}
	return filters, nil
}
