package article

import (
	"net/http"

	"github.com/myki-jim/newssys-sub000/internal/common/pagination"
	"github.com/myki-jim/newssys-sub000/internal/repository"
)

// Register wires the article inspection/search/delete endpoints onto mux.
func Register(mux *http.ServeMux, articles repository.ArticleRepository, paginationCfg pagination.Config) {
	mux.Handle("GET    /articles", SearchHandler{Articles: articles, PaginationCfg: paginationCfg})
	mux.Handle("DELETE /articles/", DeleteHandler{Articles: articles})
	mux.Handle("GET    /articles/", GetHandler{Articles: articles})
}
