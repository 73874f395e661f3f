package keyword

import (
	"net/http"

	"github.com/myki-jim/newssys-sub000/internal/repository"
)

// Register wires the keyword CRUD + active-list endpoints onto mux.
func Register(mux *http.ServeMux, keywords repository.KeywordRepository) {
	mux.Handle("POST   /keywords", CreateHandler{Keywords: keywords})
	mux.Handle("GET    /keywords", ListActiveHandler{Keywords: keywords})
	mux.Handle("PUT    /keywords/", UpdateHandler{Keywords: keywords})
	mux.Handle("DELETE /keywords/", DeleteHandler{Keywords: keywords})
	mux.Handle("GET    /keywords/", GetHandler{Keywords: keywords})
}
