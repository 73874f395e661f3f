package report

import (
	"net/http"

	"github.com/myki-jim/newssys-sub000/internal/repository"
	"github.com/myki-jim/newssys-sub000/internal/usecase/report"
)

// Register wires the report endpoints onto mux: create (async generation),
// inspect, list, delete, list references, and stream live agent progress.
func Register(mux *http.ServeMux, agent *report.Agent, reports repository.ReportRepository, refs repository.ReferenceRepository) {
	mux.Handle("POST   /reports", CreateHandler{Agent: agent, Reports: reports})
	mux.Handle("GET    /reports", ListHandler{Reports: reports})
	mux.Handle("GET    /reports/{id}/stream", StreamHandler{Agent: agent})
	mux.Handle("GET    /reports/{id}/references", ReferencesHandler{Refs: refs})
	mux.Handle("DELETE /reports/", DeleteHandler{Reports: reports})
	mux.Handle("GET    /reports/", GetHandler{Reports: reports})
}
