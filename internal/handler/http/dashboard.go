package http

import (
	"net/http"

	"github.com/reslab/attendance-backend-go/internal/domain/dashboard"
	"github.com/reslab/attendance-backend-go/internal/handler/http/response"
)

type DashboardHandler interface {
	// GetSummary returns combined dashboard data for a date
	GetSummary(w http.ResponseWriter, r *http.Request)
	// GetWeekly returns per-day status counts for the last seven days
	GetWeekly(w http.ResponseWriter, r *http.Request)
}

type dashboardHandlerImpl struct {
	dashboardService dashboard.DashboardService
}

func NewDashboardHandler(dashboardService dashboard.DashboardService) DashboardHandler {
	return &dashboardHandlerImpl{dashboardService: dashboardService}
}

// GetSummary handles GET /dashboard/summary
func (h *dashboardHandlerImpl) GetSummary(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date") // format: YYYY-MM-DD, default: today

	result, err := h.dashboardService.GetSummary(r.Context(), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetWeekly handles GET /dashboard/weekly
func (h *dashboardHandlerImpl) GetWeekly(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date") // last day of the window, default: today

	result, err := h.dashboardService.GetWeekly(r.Context(), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
