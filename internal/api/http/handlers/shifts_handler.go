package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/shift-service/internal/api/dto"
	"github.com/spec-kit/shift-service/internal/auth"
	"github.com/spec-kit/shift-service/internal/domain"
	"github.com/spec-kit/shift-service/internal/service"
	apperrors "github.com/spec-kit/shift-service/pkg/util/errorutil"
)

// ShiftsHandler exposes the shift lifecycle endpoints.
type ShiftsHandler struct {
	shifts *service.ShiftService
}

// NewShiftsHandler constructs handler.
func NewShiftsHandler(shiftService *service.ShiftService) *ShiftsHandler {
	return &ShiftsHandler{shifts: shiftService}
}

// List handles GET /shifts.
func (h *ShiftsHandler) List(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	views, err := h.shifts.ListShifts(c.Context(), session)
	if err != nil {
		return err
	}

	out := make([]dto.ShiftResponse, 0, len(views))
	for _, view := range views {
		out = append(out, dto.ShiftResponse{
			ID:            view.ID,
			UserID:        view.UserID,
			UserName:      view.UserName,
			Date:          view.Date.Format(domain.DateLayout),
			StartTime:     view.StartTime,
			EndTime:       view.EndTime,
			Status:        string(view.Status),
			ShiftType:     string(view.Type),
			IsCurrentUser: view.IsCurrentUser,
		})
	}
	return c.JSON(out)
}

// Create handles POST /shifts.
func (h *ShiftsHandler) Create(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.ShiftCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	shift, err := h.shifts.CreateShift(c.Context(), session, service.ShiftCreateInput{
		UserID:    req.UserID,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		ShiftType: req.ShiftType,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Shift created successfully",
		"id":      shift.ID,
	})
}

// Update handles PUT /shifts/:id.
func (h *ShiftsHandler) Update(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var req dto.ShiftUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	if _, err := h.shifts.UpdateShift(c.Context(), session, id, service.ShiftPatch{
		ShiftType: req.ShiftType,
		Status:    req.Status,
		Date:      req.Date,
		UserID:    req.UserID,
	}); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Shift updated successfully"})
}

// Delete handles DELETE /shifts/:id.
func (h *ShiftsHandler) Delete(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	if err := h.shifts.DeleteShift(c.Context(), session, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Shift deleted successfully"})
}
