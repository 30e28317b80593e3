package campus

import (
	"context"
	"fmt"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/resource"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/student"
)

type Service struct {
	Hostels      *resource.Service[Hostel, *Hostel]
	Books        *resource.Service[Book, *Book]
	IDCards      *resource.Service[IDCard, *IDCard]
	HallTickets  *resource.Service[HallTicket, *HallTicket]
	Certificates *resource.Service[Certificate, *Certificate]
}

func studentLink(ref *student.Ref) []resource.Link {
	return []resource.Link{resource.One("student", student.Collection, ref).Enforced()}
}

func NewService(deps resource.Deps) *Service {
	return &Service{
		Hostels: resource.NewService(resource.Definition[Hostel]{
			Name:       "hostel allotment",
			Collection: HostelCollection,
			Filters:    []string{"student", "hostelName", "block"},
			Links:      func(h *Hostel) []resource.Link { return studentLink(&h.Student) },
		}, deps),

		Books: resource.NewService(resource.Definition[Book]{
			Name:       "book",
			Collection: BookCollection,
			Unique:     []string{"isbn"},
			Filters:    []string{"author", "category"},
			Prepare: func(_ context.Context, b *Book) error {
				b.ISBN = core.CleanString(b.ISBN)
				if b.AvailableCopies == nil {
					n := b.TotalCopies
					b.AvailableCopies = &n
				}
				return nil
			},
			Check: func(_ context.Context, b *Book) error {
				return checkCopies(*b.AvailableCopies, b.TotalCopies)
			},
		}, deps),

		IDCards: resource.NewService(resource.Definition[IDCard]{
			Name:       "id card",
			Collection: IDCardCollection,
			Unique:     []string{"cardNumber"},
			Filters:    []string{"student", "status"},
			Prepare: func(_ context.Context, c *IDCard) error {
				if c.IssueDate.IsZero() {
					c.IssueDate = core.NowFunc()
				}
				if c.Status == "" {
					c.Status = CardActive
				}
				return nil
			},
			Links: func(c *IDCard) []resource.Link { return studentLink(&c.Student) },
		}, deps),

		HallTickets: resource.NewService(resource.Definition[HallTicket]{
			Name:       "hall ticket",
			Collection: HallTicketCollection,
			Unique:     []string{"ticketNumber"},
			Filters:    []string{"student", "exam", "status"},
			Prepare: func(_ context.Context, t *HallTicket) error {
				if t.Status == "" {
					t.Status = TicketActive
				}
				return nil
			},
			Links: func(t *HallTicket) []resource.Link { return studentLink(&t.Student) },
		}, deps),

		Certificates: resource.NewService(resource.Definition[Certificate]{
			Name:       "certificate",
			Collection: CertificateCollection,
			Filters:    []string{"student", "status"},
			Prepare: func(_ context.Context, c *Certificate) error {
				c.Status = resource.ReviewPending
				return nil
			},
			Links: func(c *Certificate) []resource.Link { return studentLink(&c.Student) },
		}, deps),
	}
}

func checkCopies(available, total int) error {
	if total < 1 {
		return core.NewFieldError("totalCopies", "must be at least 1")
	}
	if available < 0 || available > total {
		return core.NewFieldError("availableCopies", fmt.Sprintf("must be between 0 and %d", total))
	}
	return nil
}

// UpdateCopies sets the available copies of a book and, when total is not nil, its total copies.
// The write fails if another request changed the total copies in the meantime.
func (svc *Service) UpdateCopies(ctx context.Context, id string, available int, total *int) (*Book, error) {
	book, err := svc.Books.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := core.Fields{"availableCopies": available}
	newTotal := book.TotalCopies
	if total != nil {
		newTotal = *total
		fields["totalCopies"] = newTotal
	}
	if err := checkCopies(available, newTotal); err != nil {
		return nil, err
	}
	return svc.Books.PatchIf(ctx, id, core.Filter{"totalCopies": book.TotalCopies}, fields, "totalCopies")
}

func (svc *Service) SetCardStatus(ctx context.Context, id string, status CardStatus) (*IDCard, error) {
	if !status.IsValid() {
		return nil, core.NewFieldError("status", fmt.Sprintf("must be one of %s %s %s", CardActive, CardInactive, CardLost))
	}
	return svc.IDCards.Patch(ctx, id, core.Fields{"status": status})
}

func (svc *Service) SetTicketStatus(ctx context.Context, id string, status TicketStatus) (*HallTicket, error) {
	if !status.IsValid() {
		return nil, core.NewFieldError("status", fmt.Sprintf("must be one of %s %s", TicketActive, TicketInactive))
	}
	return svc.HallTickets.Patch(ctx, id, core.Fields{"status": status})
}

func (svc *Service) ReviewCertificate(ctx context.Context, id string, status resource.ReviewStatus, remarks string) (*Certificate, error) {
	return resource.Review(ctx, svc.Certificates, id, status, remarks)
}

// EnsureIndexes creates the unique indexes of the package resources.
func (svc *Service) EnsureIndexes(ctx context.Context) error {
	return resource.EnsureIndexes(ctx, svc.Books, svc.IDCards, svc.HallTickets)
}
