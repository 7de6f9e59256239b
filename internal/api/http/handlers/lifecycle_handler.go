package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-workflow/internal/api/dto"
	"github.com/spec-kit/issue-workflow/internal/auth"
	"github.com/spec-kit/issue-workflow/internal/service"
	apperrors "github.com/spec-kit/issue-workflow/pkg/util"
)

// LifecycleHandler exposes the transition endpoints. Every route delegates
// to a single workflow command; the acting user is always the
// authenticated principal.
type LifecycleHandler struct {
	service *service.LifecycleService
}

// NewLifecycleHandler constructs handler.
func NewLifecycleHandler(lifecycleService *service.LifecycleService) *LifecycleHandler {
	return &LifecycleHandler{service: lifecycleService}
}

// Assign POST /tickets/:id/assignments.
func (h *LifecycleHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.AssigneeID == "" {
		return apperrors.NewValidationError("assignee_id required", nil)
	}

	detail, err := h.service.Assign(c.Context(), service.AssignInput{
		TicketID:      c.Params("id"),
		AssigneeID:    req.AssigneeID,
		AssignerID:    principal.User.ID,
		Remarks:       req.Remarks,
		AttachmentIDs: req.AttachmentIDs,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewAssignmentDetailResponse(detail)})
}

// UnassignByID DELETE /assignments/:id.
func (h *LifecycleHandler) UnassignByID(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UnassignRequest
	_ = c.BodyParser(&req)

	summary, err := h.service.UnassignByID(c.Context(), c.Params("id"), principal.User.ID, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": unassignResponse(summary)})
}

// UnassignByPair DELETE /tickets/:id/assignees/:userID.
func (h *LifecycleHandler) UnassignByPair(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UnassignRequest
	_ = c.BodyParser(&req)

	summary, err := h.service.UnassignByPair(c.Context(), c.Params("id"), c.Params("userID"), principal.User.ID, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": unassignResponse(summary)})
}

// Escalate POST /tickets/:id/escalations.
func (h *LifecycleHandler) Escalate(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.EscalateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ToTier <= req.FromTier {
		return apperrors.NewValidationError("to_tier must be greater than from_tier", nil)
	}

	detail, err := h.service.Escalate(c.Context(), service.EscalateInput{
		TicketID:      c.Params("id"),
		FromTier:      req.FromTier,
		ToTier:        req.ToTier,
		Reason:        req.Reason,
		EscalatedBy:   principal.User.ID,
		AttachmentIDs: req.AttachmentIDs,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewEscalationDetailResponse(detail)})
}

// Resolve POST /tickets/:id/resolutions.
func (h *LifecycleHandler) Resolve(c *fiber.Ctx) error {
	return h.outcome(c, h.service.Resolve)
}

// Reject POST /tickets/:id/rejections.
func (h *LifecycleHandler) Reject(c *fiber.Ctx) error {
	return h.outcome(c, h.service.Reject)
}

// ReRaise POST /tickets/:id/re-raises.
func (h *LifecycleHandler) ReRaise(c *fiber.Ctx) error {
	return h.outcome(c, h.service.ReRaise)
}

// DeleteResolution DELETE /resolutions/:id.
func (h *LifecycleHandler) DeleteResolution(c *fiber.Ctx) error {
	if err := h.service.DeleteResolution(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteRejection DELETE /rejections/:id.
func (h *LifecycleHandler) DeleteRejection(c *fiber.Ctx) error {
	if err := h.service.DeleteRejection(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteReRaise DELETE /re-raises/:id.
func (h *LifecycleHandler) DeleteReRaise(c *fiber.Ctx) error {
	if err := h.service.DeleteReRaise(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type outcomeFn func(ctx context.Context, input service.OutcomeInput) (*service.OutcomeDetail, error)

func (h *LifecycleHandler) outcome(c *fiber.Ctx, run outcomeFn) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.OutcomeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.OutcomeInput{
		TicketID:      c.Params("id"),
		Reason:        req.Reason,
		ActorID:       principal.User.ID,
		AttachmentIDs: req.AttachmentIDs,
	}
	if req.Timestamp != nil {
		input.Timestamp = *req.Timestamp
	} else {
		input.Timestamp = time.Now().UTC()
	}

	detail, err := run(c.Context(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewOutcomeDetailResponse(detail)})
}

func unassignResponse(summary *service.UnassignSummary) dto.UnassignResponse {
	return dto.UnassignResponse{
		AssignmentID: summary.AssignmentID,
		TicketID:     summary.TicketID,
		AssigneeID:   summary.AssigneeID,
		TicketStatus: summary.TicketStatus,
	}
}
