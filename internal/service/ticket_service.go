package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/atendimento-service/internal/domain"
	"github.com/spec-kit/atendimento-service/internal/events"
	"github.com/spec-kit/atendimento-service/internal/repository"
	"github.com/spec-kit/atendimento-service/internal/timeutil"
	apperrors "github.com/spec-kit/atendimento-service/pkg/util"
)

// Caller identifies the authenticated staff member performing an operation.
type Caller struct {
	UserID  string
	Email   string
	IsAdmin bool
}

// TicketService owns the ticket lifecycle: creation, edits and soft
// deletion. Ownership checks live here, not in the UI layer.
type TicketService struct {
	tickets    repository.TicketRepository
	norm       *timeutil.Normalizer
	dispatcher events.Dispatcher
	randInt    func(n int) int
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Normalizer *timeutil.Normalizer
	Dispatcher events.Dispatcher
}

// TicketCreateInput describes ticket creation payload. No field is
// required; empty values persist as submitted.
type TicketCreateInput struct {
	HandledBy      string
	SubjectPerson  string
	ContactReason  string
	ContactChannel domain.ContactChannel
	Topic          string
}

// TicketUpdateInput carries a partial edit; nil fields are left untouched.
type TicketUpdateInput struct {
	HandledBy       *string
	SubjectPerson   *string
	ContactReason   *string
	ContactChannel  *domain.ContactChannel
	Topic           *string
	Status          *domain.TicketStatus
	ResolutionNotes *string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		norm:       deps.Normalizer,
		dispatcher: deps.Dispatcher,
		randInt:    rand.Intn,
	}
}

// Create registers a new atendimento for the caller.
func (s *TicketService) Create(ctx context.Context, caller Caller, input TicketCreateInput) (*domain.Ticket, error) {
	now := s.norm.Now()
	ticket := &domain.Ticket{
		TicketNumber:   s.generateTicketNumber(),
		OwnerID:        caller.UserID,
		CreatedByLabel: caller.Email,
		HandledBy:      input.HandledBy,
		SubjectPerson:  input.SubjectPerson,
		ContactReason:  input.ContactReason,
		ContactChannel: input.ContactChannel,
		Topic:          input.Topic,
		Status:         domain.TicketStatusAwaiting,
		OpenedAt:       now,
		UpdatedAt:      now,
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  caller.UserID,
		Payload: events.TicketCreatedPayload{
			TicketNumber: ticket.TicketNumber,
			Topic:        ticket.Topic,
			Channel:      ticket.ContactChannel,
		},
	})
	return ticket, nil
}

// Get fetches a single ticket, enforcing visibility.
func (s *TicketService) Get(ctx context.Context, caller Caller, id string) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.callerCanAccess(caller, ticket) {
		return nil, apperrors.NewForbidden("not the ticket owner")
	}
	return ticket, nil
}

// List returns the caller's visible set: own tickets, or every ticket for
// admin callers.
func (s *TicketService) List(ctx context.Context, caller Caller) ([]domain.Ticket, error) {
	var (
		tickets []domain.Ticket
		err     error
	)
	if caller.IsAdmin {
		tickets, err = s.tickets.ListAll(ctx)
	} else {
		tickets, err = s.tickets.ListByOwner(ctx, caller.UserID)
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// Update merges a partial edit into the ticket. Authorization runs before
// any write, so a rejected edit changes nothing. The first transition into
// COMPLETED stamps the completion time; once set it is never touched again.
func (s *TicketService) Update(ctx context.Context, caller Caller, id string, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.callerCanAccess(caller, ticket) {
		return nil, apperrors.NewForbidden("not the ticket owner")
	}

	oldStatus := ticket.Status

	if input.HandledBy != nil {
		ticket.HandledBy = *input.HandledBy
	}
	if input.SubjectPerson != nil {
		ticket.SubjectPerson = *input.SubjectPerson
	}
	if input.ContactReason != nil {
		ticket.ContactReason = *input.ContactReason
	}
	if input.ContactChannel != nil {
		ticket.ContactChannel = *input.ContactChannel
	}
	if input.Topic != nil {
		ticket.Topic = *input.Topic
	}
	if input.ResolutionNotes != nil {
		ticket.ResolutionNotes = input.ResolutionNotes
	}
	if input.Status != nil {
		ticket.Status = *input.Status
	}

	now := s.norm.Now()
	ticket.UpdatedAt = now
	if ticket.Status == domain.TicketStatusCompleted && ticket.CompletedAt == nil {
		completed := now
		ticket.CompletedAt = &completed
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}

	if ticket.Status != oldStatus {
		eventType := events.EventTicketStatusChanged
		if ticket.Status == domain.TicketStatusDeleted {
			eventType = events.EventTicketDeleted
		}
		s.publishEvent(ctx, events.Event{
			Type:     eventType,
			TicketID: ticket.ID,
			ActorID:  caller.UserID,
			Payload: events.TicketStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: ticket.Status,
			},
		})
	}
	return ticket, nil
}

// SoftDelete marks the ticket DELETED. The row stays.
func (s *TicketService) SoftDelete(ctx context.Context, caller Caller, id string) (*domain.Ticket, error) {
	deleted := domain.TicketStatusDeleted
	return s.Update(ctx, caller, id, TicketUpdateInput{Status: &deleted})
}

func (s *TicketService) loadTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) callerCanAccess(caller Caller, ticket *domain.Ticket) bool {
	return caller.IsAdmin || ticket.OwnerID == caller.UserID
}

// generateTicketNumber builds the human-readable code ATD-YYYYMMDD-NNNN.
// The random suffix is best effort; collisions are possible and accepted.
func (s *TicketService) generateTicketNumber() string {
	localNow := s.norm.ParseOrMin(s.norm.Now()).In(s.norm.Location())
	return fmt.Sprintf("ATD-%s-%04d", localNow.Format("20060102"), 1000+s.randInt(9000))
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
