package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
	"github.com/myki-jim/newssys-sub000/internal/handler/http/pathutil"
	"github.com/myki-jim/newssys-sub000/internal/handler/http/respond"
	"github.com/myki-jim/newssys-sub000/internal/repository"
	"github.com/myki-jim/newssys-sub000/internal/usecase/schedule"
)

// CreateHandler handles POST /schedules.
type CreateHandler struct{ Schedules repository.ScheduleRepository }

func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	sch := &entity.Schedule{
		Name:            req.Name,
		ScheduleType:    entity.ScheduleType(req.ScheduleType),
		Status:          entity.ScheduleStatusActive,
		IntervalMinutes: req.IntervalMinutes,
		MaxExecutions:   req.MaxExecutions,
		Config:          req.Config,
		NextRunAt:       time.Now(),
	}
	if err := sch.Validate(); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Schedules.Create(r.Context(), sch); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusCreated, toDTO(sch))
}

// ListHandler handles GET /schedules.
type ListHandler struct{ Schedules repository.ScheduleRepository }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.Schedules.List(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]DTO, len(schedules))
	for i, s := range schedules {
		out[i] = toDTO(s)
	}
	respond.JSON(w, http.StatusOK, out)
}

// GetHandler handles GET /schedules/{id}.
type GetHandler struct{ Schedules repository.ScheduleRepository }

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/schedules/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	sch, err := h.Schedules.Get(r.Context(), id)
	if err != nil {
		respond.SafeError(w, http.StatusNotFound, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(sch))
}

// DeleteHandler handles DELETE /schedules/{id}.
type DeleteHandler struct{ Schedules repository.ScheduleRepository }

func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/schedules/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Schedules.Delete(r.Context(), id); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PauseHandler handles POST /schedules/{id}/pause.
type PauseHandler struct{ Schedules repository.ScheduleRepository }

func (h PauseHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setStatus(w, r, h.Schedules, "/pause", entity.ScheduleStatusPaused)
}

// ResumeHandler handles POST /schedules/{id}/resume.
type ResumeHandler struct{ Schedules repository.ScheduleRepository }

func (h ResumeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setStatus(w, r, h.Schedules, "/resume", entity.ScheduleStatusActive)
}

func setStatus(w http.ResponseWriter, r *http.Request, repo repository.ScheduleRepository, suffix string, status entity.ScheduleStatus) {
	id, err := pathutil.ExtractID(strings.TrimSuffix(r.URL.Path, suffix), "/schedules/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	sch, err := repo.Get(r.Context(), id)
	if err != nil {
		respond.SafeError(w, http.StatusNotFound, err)
		return
	}
	sch.Status = status
	if err := repo.Update(r.Context(), sch); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(sch))
}

// ExecuteNowHandler handles POST /schedules/{id}/execute, running the
// schedule's dispatch immediately via Scheduler.ExecuteNow rather than
// waiting for the next cron tick.
type ExecuteNowHandler struct{ Scheduler *schedule.Scheduler }

func (h ExecuteNowHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(strings.TrimSuffix(r.URL.Path, "/execute"), "/schedules/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Scheduler.ExecuteNow(r.Context(), id); err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, schedule.ErrScheduleNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}
	respond.JSON(w, http.StatusAccepted, map[string]string{"status": "executed"})
}

// StatusHandler handles GET /scheduler/status: a lightweight health view of
// the scheduler loop (whether it is running, how many schedules are due).
type StatusHandler struct{ Scheduler *schedule.Scheduler }

func (h StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, h.Scheduler.Status(r.Context()))
}
