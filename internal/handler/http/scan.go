package http

import (
	"encoding/json"
	"net/http"

	"github.com/reslab/attendance-backend-go/internal/domain/scan"
	"github.com/reslab/attendance-backend-go/internal/handler/http/response"
)

type ScanHandler interface {
	Scan(w http.ResponseWriter, r *http.Request)
	ListLogs(w http.ResponseWriter, r *http.Request)
}

type scanHandlerImpl struct {
	scanService scan.ScanService
}

func NewScanHandler(scanService scan.ScanService) ScanHandler {
	return &scanHandlerImpl{scanService: scanService}
}

// Scan handles POST /rfid/scan
func (h *scanHandlerImpl) Scan(w http.ResponseWriter, r *http.Request) {
	var req scan.ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.scanService.Reject(r.Context(), req.DeviceID, "invalid request body: "+err.Error())
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.scanService.Ingest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	switch result.Action {
	case scan.ClassCheckIn:
		response.Created(w, result.Message, result)
	default:
		response.SuccessWithMessage(w, result.Message, result)
	}
}

// ListLogs handles GET /scan-logs
func (h *scanHandlerImpl) ListLogs(w http.ResponseWriter, r *http.Request) {
	filter := scan.ScanLogFilter{
		DeviceID:       getStringQueryParam(r, "device_id"),
		RFIDID:         getStringQueryParam(r, "rfid_id"),
		MemberID:       getStringQueryParam(r, "member_id"),
		Classification: getStringQueryParam(r, "classification"),
		Date:           getStringQueryParam(r, "date"),
		Page:           getIntQueryParam(r, "page", 1),
		Limit:          getIntQueryParam(r, "limit", 50),
	}

	result, err := h.scanService.ListLogs(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
