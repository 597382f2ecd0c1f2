package query

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spec-kit/atendimento-service/internal/domain"
	"github.com/spec-kit/atendimento-service/internal/timeutil"
)

// Date is a civil calendar date in the display zone, used for the inclusive
// opening-date range filter.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate reads a YYYY-MM-DD value.
func ParseDate(value string) (Date, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	year, month, day := t.Date()
	return Date{Year: year, Month: month, Day: day}, nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// Filter is the conjunction of list filters. A nil StatusIn means the
// default set {AWAITING, COMPLETED}.
type Filter struct {
	StatusIn              []domain.TicketStatus
	IncludeDeleted        bool
	Topic                 string
	TicketNumberContains  string
	SubjectPersonContains string
	HandledByContains     string
	OpenedFrom            *Date
	OpenedTo              *Date
}

// DefaultStatuses is the status set applied when none is requested.
var DefaultStatuses = []domain.TicketStatus{domain.TicketStatusAwaiting, domain.TicketStatusCompleted}

func (f Filter) statuses() []domain.TicketStatus {
	if f.StatusIn == nil {
		return DefaultStatuses
	}
	return f.StatusIn
}

// Fingerprint identifies the filter settings; page state is reset whenever
// it changes.
func (f Filter) Fingerprint() string {
	statuses := make([]string, 0, len(f.statuses()))
	for _, s := range f.statuses() {
		statuses = append(statuses, string(s))
	}
	sort.Strings(statuses)
	from, to := "", ""
	if f.OpenedFrom != nil {
		from = f.OpenedFrom.String()
	}
	if f.OpenedTo != nil {
		to = f.OpenedTo.String()
	}
	return strings.Join([]string{
		strings.Join(statuses, ","),
		fmt.Sprintf("%t", f.IncludeDeleted),
		f.Topic,
		f.TicketNumberContains,
		f.SubjectPersonContains,
		f.HandledByContains,
		from,
		to,
	}, "|")
}

// Page is one rendered slice of the filtered list. Out-of-range requests
// are clamped, never errors.
type Page struct {
	Items      []domain.Ticket
	PageNumber int
	PageSize   int
	TotalItems int
	TotalPages int
	HasPrev    bool
	HasNext    bool
}

// Engine filters, sorts and paginates the caller's visible ticket set.
type Engine struct {
	norm     *timeutil.Normalizer
	pageSize int
}

// NewEngine builds an engine. pageSize defaults to 5 when non-positive.
func NewEngine(norm *timeutil.Normalizer, pageSize int) *Engine {
	if pageSize <= 0 {
		pageSize = 5
	}
	return &Engine{norm: norm, pageSize: pageSize}
}

// PageSize returns the fixed page size.
func (e *Engine) PageSize() int {
	return e.pageSize
}

// Apply filters and sorts tickets. Filters run in a fixed order so that
// "no results" messaging can attribute the empty set to the right stage:
// deleted exclusion, status set, topic, substrings, date range. The result
// is sorted descending by opening time, stable, with unparsable timestamps
// sorting as the earliest possible instant.
func (e *Engine) Apply(tickets []domain.Ticket, filter Filter) []domain.Ticket {
	statuses := filter.statuses()
	result := make([]domain.Ticket, 0, len(tickets))

	for _, ticket := range tickets {
		if ticket.IsDeleted() && !filter.IncludeDeleted {
			continue
		}
		if !ticket.IsDeleted() && !containsStatus(statuses, ticket.Status) {
			continue
		}
		if filter.Topic != "" && ticket.Topic != filter.Topic {
			continue
		}
		if filter.TicketNumberContains != "" && !strings.Contains(ticket.TicketNumber, filter.TicketNumberContains) {
			continue
		}
		if filter.SubjectPersonContains != "" && !containsFold(ticket.SubjectPerson, filter.SubjectPersonContains) {
			continue
		}
		if filter.HandledByContains != "" && !containsFold(ticket.HandledBy, filter.HandledByContains) {
			continue
		}
		if filter.OpenedFrom != nil || filter.OpenedTo != nil {
			if !e.openedWithin(ticket.OpenedAt, filter.OpenedFrom, filter.OpenedTo) {
				continue
			}
		}
		result = append(result, ticket)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return e.norm.ParseOrMin(result[i].OpenedAt).After(e.norm.ParseOrMin(result[j].OpenedAt))
	})
	return result
}

// Paginate slices the filtered set, clamping the requested page into range.
func (e *Engine) Paginate(tickets []domain.Ticket, page int) Page {
	total := len(tickets)
	totalPages := (total + e.pageSize - 1) / e.pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * e.pageSize
	end := start + e.pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page{
		Items:      tickets[start:end],
		PageNumber: page,
		PageSize:   e.pageSize,
		TotalItems: total,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
}

func (e *Engine) openedWithin(openedAt string, from, to *Date) bool {
	year, month, day, err := e.norm.LocalDate(openedAt)
	if err != nil {
		// mirrors the legacy behavior: rows whose opening time cannot be
		// read are not excluded by the period filter
		return true
	}
	opened := Date{Year: year, Month: month, Day: day}
	if from != nil && opened.Before(*from) {
		return false
	}
	if to != nil && to.Before(opened) {
		return false
	}
	return true
}

func containsStatus(statuses []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
