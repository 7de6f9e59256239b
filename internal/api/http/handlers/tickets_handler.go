package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-workflow/internal/api/dto"
	"github.com/spec-kit/issue-workflow/internal/auth"
	"github.com/spec-kit/issue-workflow/internal/domain"
	"github.com/spec-kit/issue-workflow/internal/repository"
	"github.com/spec-kit/issue-workflow/internal/service"
	apperrors "github.com/spec-kit/issue-workflow/pkg/util"
)

const defaultPageSize = 25

// TicketsHandler manages ticket intake and read endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CategoryID == "" || req.PriorityID == "" || req.Title == "" {
		return apperrors.NewValidationError("category_id, priority_id, title required", nil)
	}

	ticket, err := h.service.CreateTicket(c.Context(), principal.User.ID, service.TicketCreateInput{
		CategoryID:  req.CategoryID,
		PriorityID:  req.PriorityID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketSummary(*ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filter := parseTicketFilter(c)
	tickets, err := h.service.ListTickets(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketSummary(tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	detail, err := h.service.GetTicketDetail(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetailResponse(detail)})
}

// ListHistory GET /tickets/:id/history.
func (h *TicketsHandler) ListHistory(c *fiber.Ctx) error {
	limit := queryInt(c, "limit", defaultPageSize)
	offset := queryInt(c, "offset", 0)
	entries, err := h.service.ListHistory(c.Context(), c.Params("id"), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.HistoryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, dto.NewHistoryResponse(entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func ticketDetailResponse(detail *service.TicketDetail) dto.TicketDetailResponse {
	ticket := detail.Ticket
	resp := dto.TicketDetailResponse{
		ID:          ticket.ID,
		ExternalKey: ticket.ExternalKey,
		CategoryID:  ticket.CategoryID,
		PriorityID:  ticket.PriorityID,
		ReporterID:  ticket.ReporterID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Status:      ticket.Status,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
		ResolvedAt:  ticket.ResolvedAt,
		Assignments: make([]dto.AssignmentResponse, 0, len(detail.Assignments)),
		Escalations: make([]dto.EscalationResponse, 0, len(detail.Escalations)),
		Tiers:       make([]dto.TierResponse, 0, len(detail.Tiers)),
		Resolutions: make([]dto.OutcomeRecord, 0, len(detail.Resolutions)),
		Rejections:  make([]dto.OutcomeRecord, 0, len(detail.Rejections)),
		ReRaises:    make([]dto.OutcomeRecord, 0, len(detail.ReRaises)),
		History:     make([]dto.HistoryResponse, 0, len(detail.History)),
	}
	for _, a := range detail.Assignments {
		resp.Assignments = append(resp.Assignments, dto.NewAssignmentResponse(a))
	}
	for _, e := range detail.Escalations {
		resp.Escalations = append(resp.Escalations, dto.NewEscalationResponse(e))
	}
	for _, t := range detail.Tiers {
		resp.Tiers = append(resp.Tiers, dto.NewTierResponse(t))
	}
	for _, r := range detail.Resolutions {
		resp.Resolutions = append(resp.Resolutions, dto.OutcomeRecord{
			ID: r.ID, TicketID: r.TicketID, ActorID: r.ResolvedBy, Reason: r.Reason, CreatedAt: r.CreatedAt,
		})
	}
	for _, r := range detail.Rejections {
		resp.Rejections = append(resp.Rejections, dto.OutcomeRecord{
			ID: r.ID, TicketID: r.TicketID, ActorID: r.RejectedBy, Reason: r.Reason, CreatedAt: r.CreatedAt,
		})
	}
	for _, r := range detail.ReRaises {
		resp.ReRaises = append(resp.ReRaises, dto.OutcomeRecord{
			ID: r.ID, TicketID: r.TicketID, ActorID: r.ReRaisedBy, Reason: r.Reason, CreatedAt: r.CreatedAt,
		})
	}
	for _, entry := range detail.History {
		resp.History = append(resp.History, dto.NewHistoryResponse(entry))
	}
	return resp
}

func parseTicketFilter(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{
		Limit:  queryInt(c, "limit", defaultPageSize),
		Offset: queryInt(c, "offset", 0),
	}
	if status := c.Query("status"); status != "" {
		filter.Statuses = []domain.TicketStatus{domain.TicketStatus(status)}
	}
	if reporter := c.Query("reporter_id"); reporter != "" {
		filter.ReporterID = &reporter
	}
	if category := c.Query("category_id"); category != "" {
		filter.CategoryID = &category
	}
	if priority := c.Query("priority_id"); priority != "" {
		filter.PriorityID = &priority
	}
	if term := c.Query("q"); term != "" {
		filter.SearchTerm = &term
	}
	return filter
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
