package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/atendimento-service/internal/api/dto"
	"github.com/spec-kit/atendimento-service/internal/auth"
	"github.com/spec-kit/atendimento-service/internal/domain"
	"github.com/spec-kit/atendimento-service/internal/query"
	"github.com/spec-kit/atendimento-service/internal/service"
	"github.com/spec-kit/atendimento-service/internal/timeutil"
	apperrors "github.com/spec-kit/atendimento-service/pkg/util"
)

// TicketsHandler manages atendimento endpoints.
type TicketsHandler struct {
	service *service.TicketService
	engine  *query.Engine
	pages   query.PageStateStore
	norm    *timeutil.Normalizer
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, engine *query.Engine, pages query.PageStateStore, norm *timeutil.Normalizer) *TicketsHandler {
	return &TicketsHandler{service: ticketService, engine: engine, pages: pages, norm: norm}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}

	input := service.TicketCreateInput{
		HandledBy:      req.HandledBy,
		SubjectPerson:  req.SubjectPerson,
		ContactReason:  req.ContactReason,
		ContactChannel: domain.ContactChannel(req.ContactChannel),
		Topic:          req.Topic,
	}
	ticket, err := h.service.Create(c.Context(), caller, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": h.ticketCard(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}
	filter, err := parseTicketFilter(c)
	if err != nil {
		return err
	}

	tickets, err := h.service.List(c.Context(), caller)
	if err != nil {
		return err
	}
	filtered := h.engine.Apply(tickets, filter)

	fingerprint := filter.Fingerprint()
	requested := parseIntDefault(c.Query("page"), 0)
	state, stateErr := h.pages.Get(c.Context(), caller.UserID)
	if stateErr != nil {
		state = query.PageState{Page: 1}
	}
	page := h.engine.Paginate(filtered, query.ResolvePage(state, requested, fingerprint))
	_ = h.pages.Put(c.Context(), caller.UserID, query.PageState{
		Page:        page.PageNumber,
		Fingerprint: fingerprint,
	})

	items := make([]dto.TicketCard, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, h.ticketCard(&page.Items[i]))
	}
	return c.JSON(fiber.Map{"data": dto.TicketListResponse{
		Items:      items,
		Page:       page.PageNumber,
		PageSize:   page.PageSize,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
		HasPrev:    page.HasPrev,
		HasNext:    page.HasNext,
	}})
}

// FormMetadata GET /tickets/meta. Fixed option lists for the form UI.
func (h *TicketsHandler) FormMetadata(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": fiber.Map{
		"topics":   domain.Topics,
		"channels": domain.Channels,
		"statuses": []domain.TicketStatus{
			domain.TicketStatusAwaiting,
			domain.TicketStatusCompleted,
			domain.TicketStatusDeleted,
		},
	}})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.Get(c.Context(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.ticketCard(ticket)})
}

// UpdateTicket PATCH /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}

	input := service.TicketUpdateInput{
		HandledBy:       req.HandledBy,
		SubjectPerson:   req.SubjectPerson,
		ContactReason:   req.ContactReason,
		Topic:           req.Topic,
		ResolutionNotes: req.ResolutionNotes,
	}
	if req.ContactChannel != nil {
		channel := domain.ContactChannel(*req.ContactChannel)
		input.ContactChannel = &channel
	}
	if req.Status != nil {
		status := domain.TicketStatus(*req.Status)
		input.Status = &status
	}

	ticket, err := h.service.Update(c.Context(), caller, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.ticketCard(ticket)})
}

// DeleteTicket DELETE /tickets/:id. Soft delete; the row stays.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.SoftDelete(c.Context(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.ticketCard(ticket)})
}

func callerFromContext(c *fiber.Ctx) (service.Caller, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return service.Caller{}, apperrors.NewUnauthorized("authentication required")
	}
	return service.Caller{
		UserID:  principal.User.ID,
		Email:   principal.User.Email,
		IsAdmin: principal.IsAdmin,
	}, nil
}

func parseTicketFilter(c *fiber.Ctx) (query.Filter, error) {
	filter := query.Filter{
		IncludeDeleted:        c.QueryBool("include_deleted"),
		Topic:                 c.Query("topic"),
		TicketNumberContains:  c.Query("ticket_number"),
		SubjectPersonContains: c.Query("subject_person"),
		HandledByContains:     c.Query("handled_by"),
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				filter.StatusIn = append(filter.StatusIn, domain.TicketStatus(trimmed))
			}
		}
	}
	if from := c.Query("opened_from"); from != "" {
		date, err := query.ParseDate(from)
		if err != nil {
			return query.Filter{}, apperrors.NewBadRequest("invalid opened_from, want YYYY-MM-DD")
		}
		filter.OpenedFrom = &date
	}
	if to := c.Query("opened_to"); to != "" {
		date, err := query.ParseDate(to)
		if err != nil {
			return query.Filter{}, apperrors.NewBadRequest("invalid opened_to, want YYYY-MM-DD")
		}
		filter.OpenedTo = &date
	}
	return filter, nil
}

func parseIntDefault(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func (h *TicketsHandler) ticketCard(ticket *domain.Ticket) dto.TicketCard {
	return dto.TicketCard{
		ID:                 ticket.ID,
		TicketNumber:       ticket.TicketNumber,
		OwnerID:            ticket.OwnerID,
		CreatedByLabel:     ticket.CreatedByLabel,
		HandledBy:          ticket.HandledBy,
		SubjectPerson:      ticket.SubjectPerson,
		ContactReason:      ticket.ContactReason,
		ContactChannel:     ticket.ContactChannel,
		Topic:              ticket.Topic,
		Status:             ticket.Status,
		ResolutionNotes:    ticket.ResolutionNotes,
		OpenedAt:           ticket.OpenedAt,
		UpdatedAt:          ticket.UpdatedAt,
		CompletedAt:        ticket.CompletedAt,
		OpenedAtDisplay:    h.norm.Display(ticket.OpenedAt),
		UpdatedAtDisplay:   h.norm.Display(ticket.UpdatedAt),
		CompletedAtDisplay: h.norm.DisplayPtr(ticket.CompletedAt),
	}
}
