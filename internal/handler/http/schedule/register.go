package schedule

import (
	"net/http"

	"github.com/myki-jim/newssys-sub000/internal/repository"
	"github.com/myki-jim/newssys-sub000/internal/usecase/schedule"
)

// Register wires the schedule CRUD/pause/resume/execute-now endpoints and
// the scheduler status endpoint onto mux.
func Register(mux *http.ServeMux, schedules repository.ScheduleRepository, sched *schedule.Scheduler) {
	mux.Handle("POST   /schedules", CreateHandler{Schedules: schedules})
	mux.Handle("GET    /schedules", ListHandler{Schedules: schedules})
	mux.Handle("POST   /schedules/{id}/pause", PauseHandler{Schedules: schedules})
	mux.Handle("POST   /schedules/{id}/resume", ResumeHandler{Schedules: schedules})
	mux.Handle("POST   /schedules/{id}/execute", ExecuteNowHandler{Scheduler: sched})
	mux.Handle("DELETE /schedules/", DeleteHandler{Schedules: schedules})
	mux.Handle("GET    /schedules/", GetHandler{Schedules: schedules})

	mux.Handle("GET    /scheduler/status", StatusHandler{Scheduler: sched})
}
