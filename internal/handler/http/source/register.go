package source

import (
	"net/http"

	"github.com/myki-jim/newssys-sub000/internal/infra/scraper"
	"github.com/myki-jim/newssys-sub000/internal/repository"
	"github.com/myki-jim/newssys-sub000/internal/usecase/task"
)

// Register wires the source CRUD, enable/disable, sitemap refresh, and
// parser-debug endpoints onto mux.
func Register(mux *http.ServeMux, sources repository.SourceRepository, manager *task.Manager, scr *scraper.Scraper) {
	mux.Handle("POST   /sources", CreateHandler{Sources: sources})
	mux.Handle("GET    /sources", ListHandler{Sources: sources})
	mux.Handle("POST   /sources/{id}/enable", EnableHandler{Sources: sources})
	mux.Handle("POST   /sources/{id}/disable", DisableHandler{Sources: sources})
	mux.Handle("POST   /sources/{id}/refresh", RefreshHandler{Sources: sources, Manager: manager})
	mux.Handle("POST   /sources/{id}/debug-parser", ParserDebugHandler{Sources: sources, Scraper: scr})
	mux.Handle("PUT    /sources/", UpdateHandler{Sources: sources})
	mux.Handle("DELETE /sources/", DeleteHandler{Sources: sources})
	mux.Handle("GET    /sources/", GetHandler{Sources: sources})
}
