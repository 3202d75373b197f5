package http

import (
	"encoding/json"
	"net/http"

	"github.com/reslab/attendance-backend-go/internal/domain/device"
	"github.com/reslab/attendance-backend-go/internal/handler/http/response"
)

type DeviceHandler interface {
	Heartbeat(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type deviceHandlerImpl struct {
	deviceService device.DeviceService
}

func NewDeviceHandler(deviceService device.DeviceService) DeviceHandler {
	return &deviceHandlerImpl{deviceService: deviceService}
}

// Heartbeat handles POST /devices/heartbeat
func (h *deviceHandlerImpl) Heartbeat(w http.ResponseWriter, r *http.Request) {
	var req device.HeartbeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.IPAddress = clientIP(r)

	result, err := h.deviceService.Heartbeat(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List handles GET /devices
func (h *deviceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.deviceService.ListDevices(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}
