package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/reslab/attendance-backend-go/internal/domain/attendance"
	"github.com/reslab/attendance-backend-go/internal/domain/member"
	"github.com/reslab/attendance-backend-go/internal/handler/http/response"
)

type MemberHandler interface {
	ListMembers(w http.ResponseWriter, r *http.Request)
	GetMember(w http.ResponseWriter, r *http.Request)
	GetMemberByRFID(w http.ResponseWriter, r *http.Request)
	CreateMember(w http.ResponseWriter, r *http.Request)
	UpdateMember(w http.ResponseWriter, r *http.Request)
	DeleteMember(w http.ResponseWriter, r *http.Request)
	ActivateMember(w http.ResponseWriter, r *http.Request)
	ListMemberAttendance(w http.ResponseWriter, r *http.Request)
}

type memberHandlerImpl struct {
	memberService     member.MemberService
	attendanceService attendance.AttendanceService
}

func NewMemberHandler(memberService member.MemberService, attendanceService attendance.AttendanceService) MemberHandler {
	return &memberHandlerImpl{
		memberService:     memberService,
		attendanceService: attendanceService,
	}
}

// ListMembers handles GET /members
func (h *memberHandlerImpl) ListMembers(w http.ResponseWriter, r *http.Request) {
	filter := member.MemberFilter{
		Search:  getStringQueryParam(r, "search"),
		Status:  getStringQueryParam(r, "status"),
		DutyDay: getStringQueryParam(r, "duty_day"),
		Page:    getIntQueryParam(r, "page", 1),
		Limit:   getIntQueryParam(r, "limit", 20),
	}

	result, err := h.memberService.ListMembers(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetMember handles GET /members/{id}
func (h *memberHandlerImpl) GetMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Member ID is required", nil)
		return
	}

	result, err := h.memberService.GetMember(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetMemberByRFID handles GET /members/rfid/{rfid}
func (h *memberHandlerImpl) GetMemberByRFID(w http.ResponseWriter, r *http.Request) {
	rfid := chi.URLParam(r, "rfid")
	if rfid == "" {
		response.BadRequest(w, "RFID is required", nil)
		return
	}

	result, err := h.memberService.GetMemberByRFID(r.Context(), rfid)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// CreateMember handles POST /members
func (h *memberHandlerImpl) CreateMember(w http.ResponseWriter, r *http.Request) {
	var req member.CreateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.memberService.CreateMember(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Member created successfully", result)
}

// UpdateMember handles PUT /members/{id}
func (h *memberHandlerImpl) UpdateMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Member ID is required", nil)
		return
	}

	var req member.UpdateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = id

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.memberService.UpdateMember(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Member updated successfully", result)
}

// DeleteMember handles DELETE /members/{id}. The member is deactivated, not removed.
func (h *memberHandlerImpl) DeleteMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Member ID is required", nil)
		return
	}

	if err := h.memberService.DeleteMember(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Member deactivated successfully", nil)
}

// ActivateMember handles POST /members/{id}/activate
func (h *memberHandlerImpl) ActivateMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Member ID is required", nil)
		return
	}

	result, err := h.memberService.ActivateMember(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Member activated successfully", result)
}

// ListMemberAttendance handles GET /members/{id}/attendances
func (h *memberHandlerImpl) ListMemberAttendance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Member ID is required", nil)
		return
	}

	filter := attendanceFilterFromQuery(r)
	result, err := h.attendanceService.ListMemberAttendance(r.Context(), id, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
