package article

import (
	"net/http"

	"github.com/myki-jim/newssys-sub000/internal/handler/http/pathutil"
	"github.com/myki-jim/newssys-sub000/internal/handler/http/respond"
	"github.com/myki-jim/newssys-sub000/internal/repository"
)

// GetHandler handles GET /articles/{id}.
type GetHandler struct{ Articles repository.ArticleRepository }

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/articles/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	a, err := h.Articles.Get(r.Context(), id)
	if err != nil {
		respond.SafeError(w, http.StatusNotFound, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(a))
}

// DeleteHandler handles DELETE /articles/{id}.
type DeleteHandler struct{ Articles repository.ArticleRepository }

func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/articles/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Articles.Delete(r.Context(), id); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
