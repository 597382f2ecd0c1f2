package dto

import "github.com/spec-kit/atendimento-service/internal/domain"

// CreateTicketRequest payload for a new atendimento. Nothing is required;
// empty fields persist as submitted.
type CreateTicketRequest struct {
	HandledBy      string `json:"handled_by"`
	SubjectPerson  string `json:"subject_person"`
	ContactReason  string `json:"contact_reason"`
	ContactChannel string `json:"contact_channel"`
	Topic          string `json:"topic"`
}

// UpdateTicketRequest carries a partial edit; absent fields stay untouched.
type UpdateTicketRequest struct {
	HandledBy       *string `json:"handled_by"`
	SubjectPerson   *string `json:"subject_person"`
	ContactReason   *string `json:"contact_reason"`
	ContactChannel  *string `json:"contact_channel"`
	Topic           *string `json:"topic"`
	Status          *string `json:"status"`
	ResolutionNotes *string `json:"resolution_notes"`
}

// TicketCard is one rendered ticket. Raw stored timestamps travel next to
// their display form so the UI never parses anything.
type TicketCard struct {
	ID                 string                `json:"id"`
	TicketNumber       string                `json:"ticket_number"`
	OwnerID            string                `json:"owner_id"`
	CreatedByLabel     string                `json:"created_by_label,omitempty"`
	HandledBy          string                `json:"handled_by"`
	SubjectPerson      string                `json:"subject_person"`
	ContactReason      string                `json:"contact_reason"`
	ContactChannel     domain.ContactChannel `json:"contact_channel"`
	Topic              string                `json:"topic"`
	Status             domain.TicketStatus   `json:"status"`
	ResolutionNotes    *string               `json:"resolution_notes"`
	OpenedAt           string                `json:"opened_at"`
	UpdatedAt          string                `json:"updated_at"`
	CompletedAt        *string               `json:"completed_at"`
	OpenedAtDisplay    string                `json:"opened_at_display"`
	UpdatedAtDisplay   string                `json:"updated_at_display"`
	CompletedAtDisplay string                `json:"completed_at_display"`
}

// TicketListResponse is one page of the filtered list.
type TicketListResponse struct {
	Items      []TicketCard `json:"items"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalItems int          `json:"total_items"`
	TotalPages int          `json:"total_pages"`
	HasPrev    bool         `json:"has_prev"`
	HasNext    bool         `json:"has_next"`
}
