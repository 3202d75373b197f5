package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/reslab/attendance-backend-go/internal/domain/reconciliation"
	"github.com/reslab/attendance-backend-go/internal/handler/http/response"
)

type ReconciliationHandler interface {
	Run(w http.ResponseWriter, r *http.Request)
	CleanupDuplicates(w http.ResponseWriter, r *http.Request)
	AutoCheckout(w http.ResponseWriter, r *http.Request)
	SynthesizeAbsences(w http.ResponseWriter, r *http.Request)
}

type reconciliationHandlerImpl struct {
	engine reconciliation.Engine
}

func NewReconciliationHandler(engine reconciliation.Engine) ReconciliationHandler {
	return &reconciliationHandlerImpl{engine: engine}
}

// decodeRunRequest reads the optional {"date": "..."} body. The date may also
// come from the query string; an empty body means today.
func decodeRunRequest(r *http.Request) (reconciliation.RunRequest, error) {
	var req reconciliation.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return req, err
	}
	if req.Date == "" {
		req.Date = r.URL.Query().Get("date")
	}
	return req, nil
}

// Run handles POST /reconciliation/run
//
// All three phases run in order. Before the day's cutoff the absence phase
// creates nothing and reports why in absences.skipped_reason.
func (h *reconciliationHandlerImpl) Run(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRunRequest(r)
	if err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), reconciliation.RunTimeout)
	defer cancel()

	result, err := h.engine.Run(ctx, req.Date, reconciliation.TriggerManual)
	if err != nil {
		slog.Error("Manual reconciliation failed", "date", req.Date, "error", err)
		response.HandleError(w, err)
		return
	}

	if result.Absences.SkippedReason != "" {
		response.SuccessWithMessage(w, "Reconciliation completed, absences skipped: "+result.Absences.SkippedReason, result)
		return
	}
	response.SuccessWithMessage(w, "Reconciliation completed", result)
}

// CleanupDuplicates handles POST /reconciliation/duplicates
func (h *reconciliationHandlerImpl) CleanupDuplicates(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRunRequest(r)
	if err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.engine.CleanupDuplicates(r.Context(), req.Date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Duplicate cleanup completed", result)
}

// AutoCheckout handles POST /reconciliation/auto-checkout
func (h *reconciliationHandlerImpl) AutoCheckout(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRunRequest(r)
	if err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.engine.AutoCheckout(r.Context(), req.Date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Auto checkout completed", result)
}

// SynthesizeAbsences handles POST /reconciliation/absences
//
// Before the cutoff of the target date nothing is created; the response is
// still 200 with skipped_reason set.
func (h *reconciliationHandlerImpl) SynthesizeAbsences(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRunRequest(r)
	if err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.engine.SynthesizeAbsences(r.Context(), req.Date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if result.SkippedReason != "" {
		response.SuccessWithMessage(w, "Absence synthesis skipped: "+result.SkippedReason, result)
		return
	}
	response.SuccessWithMessage(w, "Absence synthesis completed", result)
}
