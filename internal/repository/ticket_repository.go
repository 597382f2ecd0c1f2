package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/atendimento-service/internal/domain"
)

// TicketRepository encapsulates atendimento persistence. Listing returns the
// caller's full visible set ordered by opening time; filtering happens in
// the query engine after timestamps are normalized.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Ticket, error)
	ListAll(ctx context.Context) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, ticket_number, owner_id, created_by_label, handled_by, subject_person,
               contact_reason, contact_channel, topic, status, resolution_notes,
               opened_at, updated_at, completed_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO atendimentos (ticket_number, owner_id, created_by_label, handled_by, subject_person,
            contact_reason, contact_channel, topic, status, resolution_notes, opened_at, updated_at, completed_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		ticket.TicketNumber,
		ticket.OwnerID,
		ticket.CreatedByLabel,
		ticket.HandledBy,
		ticket.SubjectPerson,
		ticket.ContactReason,
		ticket.ContactChannel,
		ticket.Topic,
		ticket.Status,
		ticket.ResolutionNotes,
		ticket.OpenedAt,
		ticket.UpdatedAt,
		ticket.CompletedAt,
	).Scan(&ticket.ID)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE atendimentos SET handled_by=$1, subject_person=$2, contact_reason=$3, contact_channel=$4,
            topic=$5, status=$6, resolution_notes=$7, updated_at=$8, completed_at=$9
        WHERE id=$10`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.HandledBy,
		ticket.SubjectPerson,
		ticket.ContactReason,
		ticket.ContactChannel,
		ticket.Topic,
		ticket.Status,
		ticket.ResolutionNotes,
		ticket.UpdatedAt,
		ticket.CompletedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM atendimentos WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.OwnerID,
		&ticket.CreatedByLabel,
		&ticket.HandledBy,
		&ticket.SubjectPerson,
		&ticket.ContactReason,
		&ticket.ContactChannel,
		&ticket.Topic,
		&ticket.Status,
		&ticket.ResolutionNotes,
		&ticket.OpenedAt,
		&ticket.UpdatedAt,
		&ticket.CompletedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM atendimentos WHERE owner_id=$1 ORDER BY opened_at DESC`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM atendimentos ORDER BY opened_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.TicketNumber,
			&ticket.OwnerID,
			&ticket.CreatedByLabel,
			&ticket.HandledBy,
			&ticket.SubjectPerson,
			&ticket.ContactReason,
			&ticket.ContactChannel,
			&ticket.Topic,
			&ticket.Status,
			&ticket.ResolutionNotes,
			&ticket.OpenedAt,
			&ticket.UpdatedAt,
			&ticket.CompletedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
