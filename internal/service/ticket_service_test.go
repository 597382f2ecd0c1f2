package service

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/atendimento-service/internal/domain"
	"github.com/spec-kit/atendimento-service/internal/timeutil"
	apperrors "github.com/spec-kit/atendimento-service/pkg/util"
)

type fakeTicketRepo struct {
	tickets map[string]domain.Ticket
	nextID  int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]domain.Ticket)}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.nextID++
	ticket.ID = fmt.Sprintf("tid-%d", r.nextID)
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (r *fakeTicketRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.OwnerID == ownerID {
			result = append(result, ticket)
		}
	}
	return result, nil
}

func (r *fakeTicketRepo) ListAll(_ context.Context) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		result = append(result, ticket)
	}
	return result, nil
}

type serviceFixture struct {
	svc   *TicketService
	repo  *fakeTicketRepo
	clock *time.Time
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	norm, err := timeutil.NewNormalizer("America/Sao_Paulo")
	require.NoError(t, err)

	now := time.Date(2024, 3, 15, 18, 30, 45, 0, time.UTC)
	clock := &now
	norm = norm.WithClock(func() time.Time { return *clock })

	repo := newFakeTicketRepo()
	svc := NewTicketService(TicketDependencies{
		TicketRepo: repo,
		Normalizer: norm,
	})
	return &serviceFixture{svc: svc, repo: repo, clock: clock}
}

func (f *serviceFixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}

var owner = Caller{UserID: "user-1", Email: "maria@example.com"}
var stranger = Caller{UserID: "user-2", Email: "pedro@example.com"}
var admin = Caller{UserID: "user-3", Email: "rh@example.com", IsAdmin: true}

var ticketNumberPattern = regexp.MustCompile(`^ATD-\d{8}-\d{4}$`)

func TestCreate_InitialState(t *testing.T) {
	f := newServiceFixture(t)

	ticket, err := f.svc.Create(context.Background(), owner, TicketCreateInput{
		Topic:          "Salário",
		ContactChannel: domain.ChannelPhone,
		SubjectPerson:  "Maria Silva",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusAwaiting, ticket.Status)
	assert.Nil(t, ticket.CompletedAt)
	assert.Regexp(t, ticketNumberPattern, ticket.TicketNumber)
	assert.Equal(t, owner.UserID, ticket.OwnerID)
	assert.Equal(t, owner.Email, ticket.CreatedByLabel)
	assert.Equal(t, ticket.OpenedAt, ticket.UpdatedAt)
	assert.NotEmpty(t, ticket.ID)
}

func TestCreate_EmptyFieldsPersistAsIs(t *testing.T) {
	f := newServiceFixture(t)

	ticket, err := f.svc.Create(context.Background(), owner, TicketCreateInput{})
	require.NoError(t, err)

	assert.Empty(t, ticket.HandledBy)
	assert.Empty(t, ticket.SubjectPerson)
	assert.Empty(t, ticket.ContactReason)
	assert.Empty(t, ticket.Topic)
}

func TestUpdate_CompletedAtSetOnce(t *testing.T) {
	f := newServiceFixture(t)
	ticket, err := f.svc.Create(context.Background(), owner, TicketCreateInput{Topic: "Salário"})
	require.NoError(t, err)

	f.advance(time.Hour)
	completed := domain.TicketStatusCompleted
	updated, err := f.svc.Update(context.Background(), owner, ticket.ID, TicketUpdateInput{Status: &completed})
	require.NoError(t, err)
	require.NotNil(t, updated.CompletedAt)
	firstCompletion := *updated.CompletedAt
	assert.Equal(t, updated.UpdatedAt, firstCompletion)

	f.advance(time.Hour)
	again, err := f.svc.Update(context.Background(), owner, ticket.ID, TicketUpdateInput{Status: &completed})
	require.NoError(t, err)
	require.NotNil(t, again.CompletedAt)
	assert.Equal(t, firstCompletion, *again.CompletedAt)
	assert.NotEqual(t, again.UpdatedAt, *again.CompletedAt)
}

func TestUpdate_RefreshesUpdatedAt(t *testing.T) {
	f := newServiceFixture(t)
	ticket, err := f.svc.Create(context.Background(), owner, TicketCreateInput{})
	require.NoError(t, err)

	f.advance(time.Minute)
	notes := "ligação retornada"
	updated, err := f.svc.Update(context.Background(), owner, ticket.ID, TicketUpdateInput{ResolutionNotes: &notes})
	require.NoError(t, err)
	assert.NotEqual(t, ticket.UpdatedAt, updated.UpdatedAt)
	require.NotNil(t, updated.ResolutionNotes)
	assert.Equal(t, notes, *updated.ResolutionNotes)
	// untouched fields survive a partial update
	assert.Equal(t, ticket.OpenedAt, updated.OpenedAt)
	assert.Equal(t, domain.TicketStatusAwaiting, updated.Status)
}

func TestUpdate_NotFound(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Update(context.Background(), owner, "missing", TicketUpdateInput{})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestUpdate_NonOwnerRejectedWithoutWrites(t *testing.T) {
	f := newServiceFixture(t)
	ticket, err := f.svc.Create(context.Background(), owner, TicketCreateInput{SubjectPerson: "Maria Silva"})
	require.NoError(t, err)

	handled := "Intruso"
	_, err = f.svc.Update(context.Background(), stranger, ticket.ID, TicketUpdateInput{HandledBy: &handled})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)

	stored := f.repo.tickets[ticket.ID]
	assert.Equal(t, *ticket, stored)
}

func TestUpdate_AdminMayEditAnyTicket(t *testing.T) {
	f := newServiceFixture(t)
	ticket, err := f.svc.Create(context.Background(), owner, TicketCreateInput{})
	require.NoError(t, err)

	completed := domain.TicketStatusCompleted
	updated, err := f.svc.Update(context.Background(), admin, ticket.ID, TicketUpdateInput{Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusCompleted, updated.Status)
}

func TestSoftDelete_KeepsRow(t *testing.T) {
	f := newServiceFixture(t)
	ticket, err := f.svc.Create(context.Background(), owner, TicketCreateInput{})
	require.NoError(t, err)

	deleted, err := f.svc.SoftDelete(context.Background(), owner, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusDeleted, deleted.Status)

	stored, ok := f.repo.tickets[ticket.ID]
	require.True(t, ok, "soft delete must not remove the row")
	assert.Equal(t, domain.TicketStatusDeleted, stored.Status)
}

func TestList_ScopedByCaller(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.svc.Create(context.Background(), owner, TicketCreateInput{})
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), stranger, TicketCreateInput{})
	require.NoError(t, err)

	own, err := f.svc.List(context.Background(), owner)
	require.NoError(t, err)
	assert.Len(t, own, 1)

	all, err := f.svc.List(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGet_VisibilityEnforced(t *testing.T) {
	f := newServiceFixture(t)
	ticket, err := f.svc.Create(context.Background(), owner, TicketCreateInput{})
	require.NoError(t, err)

	_, err = f.svc.Get(context.Background(), stranger, ticket.ID)
	require.Error(t, err)

	got, err := f.svc.Get(context.Background(), admin, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)
}
