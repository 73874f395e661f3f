package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
	"github.com/myki-jim/newssys-sub000/internal/handler/http/pathutil"
	"github.com/myki-jim/newssys-sub000/internal/handler/http/respond"
	"github.com/myki-jim/newssys-sub000/internal/repository"
	"github.com/myki-jim/newssys-sub000/internal/usecase/report"
)

// CreateHandler handles POST /reports: it persists a Report row in
// ReportStatusGenerating and kicks off Agent.Generate in the background,
// returning immediately with the row's id so the caller can poll GET
// /reports/{id} or subscribe to GET /reports/{id}/stream.
type CreateHandler struct {
	Agent   *report.Agent
	Reports repository.ReportRepository
	Logger  *slog.Logger
}

func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	rpt := &entity.Report{
		Title:          req.Title,
		TimeRangeStart: req.TimeRangeStart,
		TimeRangeEnd:   req.TimeRangeEnd,
		TemplateID:     req.TemplateID,
		Language:       req.Language,
		Status:         entity.ReportStatusGenerating,
		AgentStage:     entity.StageInitializing,
	}
	if err := rpt.Validate(); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Reports.Create(r.Context(), rpt); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	opts := report.GenerateOptions{
		UserPrompt: req.UserPrompt,
		Keywords:   req.Keywords,
		MaxEvents:  req.MaxEvents,
		MinScore:   req.MinScore,
	}

	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	go func() {
		if err := h.Agent.Generate(context.Background(), rpt, opts); err != nil {
			logger.Error("report generation failed", slog.Int64("report_id", rpt.ID), slog.Any("error", err))
		}
	}()

	respond.JSON(w, http.StatusAccepted, toDTO(rpt))
}

// ListHandler handles GET /reports.
type ListHandler struct{ Reports repository.ReportRepository }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit := 50
	reports, err := h.Reports.ListRecent(r.Context(), limit)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]DTO, len(reports))
	for i, rpt := range reports {
		out[i] = toDTO(rpt)
	}
	respond.JSON(w, http.StatusOK, out)
}

// GetHandler handles GET /reports/{id}.
type GetHandler struct{ Reports repository.ReportRepository }

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/reports/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	rpt, err := h.Reports.Get(r.Context(), id)
	if err != nil {
		respond.SafeError(w, http.StatusNotFound, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(rpt))
}

// DeleteHandler handles DELETE /reports/{id}.
type DeleteHandler struct{ Reports repository.ReportRepository }

func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/reports/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Reports.Delete(r.Context(), id); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReferencesHandler handles GET /reports/{id}/references.
type ReferencesHandler struct{ Refs repository.ReferenceRepository }

func (h ReferencesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(strings.TrimSuffix(r.URL.Path, "/references"), "/reports/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	refs, err := h.Refs.ListByReport(r.Context(), id)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]ReferenceDTO, len(refs))
	for i, ref := range refs {
		out[i] = toReferenceDTO(ref)
	}
	respond.JSON(w, http.StatusOK, out)
}
