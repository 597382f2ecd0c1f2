package domain

// TicketStatus enumerates lifecycle states for atendimento tickets.
// Deletion is a status value, never a row removal.
type TicketStatus string

const (
	TicketStatusAwaiting  TicketStatus = "AWAITING"
	TicketStatusCompleted TicketStatus = "COMPLETED"
	TicketStatusDeleted   TicketStatus = "DELETED"
)

// ContactChannel enumerates how the person reached the HR desk.
type ContactChannel string

const (
	ChannelPhone           ContactChannel = "PHONE"
	ChannelWhatsApp        ContactChannel = "WHATSAPP"
	ChannelEmail           ContactChannel = "EMAIL"
	ChannelInPerson        ContactChannel = "IN_PERSON"
	ChannelInternalRequest ContactChannel = "INTERNAL_REQUEST"
)

// Channels lists the selectable contact channels in form order.
var Channels = []ContactChannel{
	ChannelPhone,
	ChannelWhatsApp,
	ChannelEmail,
	ChannelInPerson,
	ChannelInternalRequest,
}

// Topics is the fixed list of HR subjects a ticket can be filed under.
var Topics = []string{
	"Salário",
	"Salário Família",
	"Movimentações Megaged",
	"Vale Transporte",
	"Vale Alimentação / Refeição",
	"Retorno ao Trabalho",
}

// Ticket is the aggregate for service-contact records. Timestamps are the
// persisted string encoding; interpretation belongs to timeutil.Normalizer
// because legacy rows carry several historical encodings.
type Ticket struct {
	ID              string
	TicketNumber    string
	OwnerID         string
	CreatedByLabel  string
	HandledBy       string
	SubjectPerson   string
	ContactReason   string
	ContactChannel  ContactChannel
	Topic           string
	Status          TicketStatus
	ResolutionNotes *string
	OpenedAt        string
	UpdatedAt       string
	CompletedAt     *string
}

// IsDeleted reports whether the ticket has been soft-deleted.
func (t *Ticket) IsDeleted() bool {
	return t.Status == TicketStatusDeleted
}
