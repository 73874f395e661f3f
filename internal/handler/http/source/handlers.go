package source

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
	"github.com/myki-jim/newssys-sub000/internal/handler/http/pathutil"
	"github.com/myki-jim/newssys-sub000/internal/handler/http/respond"
	"github.com/myki-jim/newssys-sub000/internal/repository"
)

const defaultCrawlIntervalSeconds = 300

// CreateHandler handles POST /sources. New sources are always created
// disabled: CrawlSource.Validate rejects Enabled=true until robots.txt has
// been checked, which a subsequent POST /sources/{id}/refresh performs.
type CreateHandler struct{ Sources repository.SourceRepository }

func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	interval := req.CrawlIntervalSeconds
	if interval == 0 {
		interval = defaultCrawlIntervalSeconds
	}
	src := &entity.CrawlSource{
		SiteName:             req.SiteName,
		BaseURL:              req.BaseURL,
		ParserConfig:         req.ParserConfig,
		CrawlIntervalSeconds: interval,
		DiscoveryMethod:      entity.DiscoveryMethod(req.DiscoveryMethod),
	}
	if err := src.Validate(); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Sources.Create(r.Context(), src); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusCreated, toDTO(src))
}

// ListHandler handles GET /sources, with an optional ?enabled=true filter.
type ListHandler struct{ Sources repository.SourceRepository }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var (
		sources []*entity.CrawlSource
		err     error
	)
	if r.URL.Query().Get("enabled") == "true" {
		sources, err = h.Sources.ListEnabled(r.Context())
	} else {
		sources, err = h.Sources.List(r.Context())
	}
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]DTO, len(sources))
	for i, s := range sources {
		out[i] = toDTO(s)
	}
	respond.JSON(w, http.StatusOK, out)
}

// GetHandler handles GET /sources/{id}.
type GetHandler struct{ Sources repository.SourceRepository }

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/sources/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	src, err := h.Sources.Get(r.Context(), id)
	if err != nil {
		respond.SafeError(w, http.StatusNotFound, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(src))
}

// UpdateHandler handles PUT /sources/{id}.
type UpdateHandler struct{ Sources repository.SourceRepository }

func (h UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/sources/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	src, err := h.Sources.Get(r.Context(), id)
	if err != nil {
		respond.SafeError(w, http.StatusNotFound, err)
		return
	}
	src.SiteName = req.SiteName
	src.BaseURL = req.BaseURL
	src.ParserConfig = req.ParserConfig
	src.CrawlIntervalSeconds = req.CrawlIntervalSeconds
	src.DiscoveryMethod = entity.DiscoveryMethod(req.DiscoveryMethod)
	if err := src.Validate(); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Sources.Update(r.Context(), src); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(src))
}

// DeleteHandler handles DELETE /sources/{id}.
type DeleteHandler struct{ Sources repository.SourceRepository }

func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/sources/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Sources.Delete(r.Context(), id); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func setEnabled(w http.ResponseWriter, r *http.Request, repo repository.SourceRepository, suffix string, enabled bool) {
	id, err := pathutil.ExtractID(strings.TrimSuffix(r.URL.Path, suffix), "/sources/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	src, err := repo.Get(r.Context(), id)
	if err != nil {
		respond.SafeError(w, http.StatusNotFound, err)
		return
	}
	src.Enabled = enabled
	if err := src.Validate(); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := repo.Update(r.Context(), src); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(src))
}

// EnableHandler handles POST /sources/{id}/enable.
type EnableHandler struct{ Sources repository.SourceRepository }

func (h EnableHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setEnabled(w, r, h.Sources, "/enable", true)
}

// DisableHandler handles POST /sources/{id}/disable.
type DisableHandler struct{ Sources repository.SourceRepository }

func (h DisableHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setEnabled(w, r, h.Sources, "/disable", false)
}
