package keyword

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
	"github.com/myki-jim/newssys-sub000/internal/handler/http/pathutil"
	"github.com/myki-jim/newssys-sub000/internal/handler/http/respond"
	"github.com/myki-jim/newssys-sub000/internal/repository"
)

// CreateHandler handles POST /keywords.
type CreateHandler struct{ Keywords repository.KeywordRepository }

func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	k := &entity.SearchKeyword{
		Query:      req.Query,
		TimeRange:  entity.TimeRange(req.TimeRange),
		MaxResults: req.MaxResults,
		Region:     req.Region,
		IsActive:   true,
	}
	if err := k.Validate(); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Keywords.Create(r.Context(), k); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusCreated, toDTO(k))
}

// ListActiveHandler handles GET /keywords: the active keyword set the
// Scheduler's keyword-search schedules consult.
type ListActiveHandler struct{ Keywords repository.KeywordRepository }

func (h ListActiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	keywords, err := h.Keywords.ListActive(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]DTO, len(keywords))
	for i, k := range keywords {
		out[i] = toDTO(k)
	}
	respond.JSON(w, http.StatusOK, out)
}

// GetHandler handles GET /keywords/{id}.
type GetHandler struct{ Keywords repository.KeywordRepository }

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/keywords/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	k, err := h.Keywords.Get(r.Context(), id)
	if err != nil {
		respond.SafeError(w, http.StatusNotFound, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(k))
}

// UpdateHandler handles PUT /keywords/{id}.
type UpdateHandler struct{ Keywords repository.KeywordRepository }

func (h UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/keywords/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	k, err := h.Keywords.Get(r.Context(), id)
	if err != nil {
		respond.SafeError(w, http.StatusNotFound, err)
		return
	}
	k.Query = req.Query
	k.TimeRange = entity.TimeRange(req.TimeRange)
	k.MaxResults = req.MaxResults
	k.Region = req.Region
	k.IsActive = req.IsActive
	if err := k.Validate(); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Keywords.Update(r.Context(), k); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(k))
}

// DeleteHandler handles DELETE /keywords/{id}.
type DeleteHandler struct{ Keywords repository.KeywordRepository }

func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/keywords/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Keywords.Delete(r.Context(), id); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
