package campus_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/campus"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/resource"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/student"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/testutil"
)

func setup(t *testing.T) (*campus.Service, *student.Student) {
	deps, _ := testutil.NewDeps(t)
	svc := campus.NewService(deps)
	require.NoError(t, svc.EnsureIndexes(context.Background()))

	std, err := student.NewService(deps).Create(context.Background(), &student.Student{Name: "Ada", RollNumber: "CS-001"})
	require.NoError(t, err)
	return svc, std
}

func intPtr(n int) *int { return &n }

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	return verr.Fields[0].Field
}

func TestService_Books(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	book, err := svc.Books.Create(ctx, &campus.Book{Title: "SICP", Author: "Abelson", ISBN: " 978-0262510875 ", TotalCopies: 3})
	require.NoError(t, err)
	require.NotNil(t, book.AvailableCopies)
	assert.Equal(t, 3, *book.AvailableCopies, "defaults to the total")
	assert.Equal(t, "978-0262510875", book.ISBN)

	tests := []struct {
		name    string
		book    campus.Book
		wantFld string
	}{
		{name: "duplicate isbn", book: campus.Book{Title: "Copy", Author: "X", ISBN: "978-0262510875", TotalCopies: 1}, wantFld: "isbn"},
		{name: "more available than total", book: campus.Book{Title: "T", Author: "X", ISBN: "1", TotalCopies: 2, AvailableCopies: intPtr(3)}, wantFld: "availableCopies"},
		{name: "negative available", book: campus.Book{Title: "T", Author: "X", ISBN: "2", TotalCopies: 2, AvailableCopies: intPtr(-1)}, wantFld: "availableCopies"},
		{name: "no copies", book: campus.Book{Title: "T", Author: "X", ISBN: "3"}, wantFld: "totalCopies"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Books.Create(ctx, &tt.book)
			assert.Equal(t, tt.wantFld, fieldOf(t, err))
		})
	}

	zero, err := svc.Books.Create(ctx, &campus.Book{Title: "Lost", Author: "X", ISBN: "4", TotalCopies: 1, AvailableCopies: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, 0, *zero.AvailableCopies, "an explicit zero is kept")
}

func TestService_UpdateCopies(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	book, err := svc.Books.Create(ctx, &campus.Book{Title: "SICP", Author: "Abelson", ISBN: "1", TotalCopies: 3})
	require.NoError(t, err)

	got, err := svc.UpdateCopies(ctx, book.ID, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, *got.AvailableCopies)
	assert.Equal(t, 3, got.TotalCopies)

	got, err = svc.UpdateCopies(ctx, book.ID, 5, intPtr(6))
	require.NoError(t, err)
	assert.Equal(t, 5, *got.AvailableCopies)
	assert.Equal(t, 6, got.TotalCopies)

	_, err = svc.UpdateCopies(ctx, book.ID, 7, nil)
	assert.Equal(t, "availableCopies", fieldOf(t, err))

	_, err = svc.UpdateCopies(ctx, book.ID, 0, intPtr(0))
	assert.Equal(t, "totalCopies", fieldOf(t, err))

	_, err = svc.UpdateCopies(ctx, "nope", 1, nil)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestService_IDCards(t *testing.T) {
	svc, std := setup(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	testutil.FreezeTime(t, now)

	card, err := svc.IDCards.Create(ctx, &campus.IDCard{
		Student: student.Ref{ID: std.ID}, CardNumber: "ID-1", ValidUntil: now.AddDate(1, 0, 0), BloodGroup: "O+",
	})
	require.NoError(t, err)
	assert.Equal(t, campus.CardActive, card.Status)
	assert.True(t, now.Equal(card.IssueDate))

	_, err = svc.IDCards.Create(ctx, &campus.IDCard{Student: student.Ref{ID: std.ID}, CardNumber: "ID-1", ValidUntil: now})
	assert.Equal(t, "cardNumber", fieldOf(t, err))

	_, err = svc.IDCards.Create(ctx, &campus.IDCard{Student: student.Ref{ID: std.ID}, CardNumber: "ID-2", ValidUntil: now, BloodGroup: "Z"})
	assert.Equal(t, "bloodGroup", fieldOf(t, err))

	lost, err := svc.SetCardStatus(ctx, card.ID, campus.CardLost)
	require.NoError(t, err)
	assert.Equal(t, campus.CardLost, lost.Status)

	_, err = svc.SetCardStatus(ctx, card.ID, "Stolen")
	assert.Equal(t, "status", fieldOf(t, err))
}

func TestService_HallTickets(t *testing.T) {
	svc, std := setup(t)
	ctx := context.Background()

	ticket, err := svc.HallTickets.Create(ctx, &campus.HallTicket{
		Student: student.Ref{ID: std.ID}, TicketNumber: "HT-1", Exam: "Finals", ExamDate: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, campus.TicketActive, ticket.Status)

	got, err := svc.SetTicketStatus(ctx, ticket.ID, campus.TicketInactive)
	require.NoError(t, err)
	assert.Equal(t, campus.TicketInactive, got.Status)

	_, err = svc.SetTicketStatus(ctx, ticket.ID, "Lost")
	assert.Equal(t, "status", fieldOf(t, err))
}

func TestService_ReviewCertificate(t *testing.T) {
	svc, std := setup(t)
	ctx := context.Background()

	cert, err := svc.Certificates.Create(ctx, &campus.Certificate{
		Student: student.Ref{ID: std.ID}, Title: "Go basics", Status: resource.ReviewApproved,
	})
	require.NoError(t, err)
	assert.Equal(t, resource.ReviewPending, cert.Status, "new certificates always await review")

	tests := []struct {
		name        string
		status      resource.ReviewStatus
		remarks     string
		wantStatus  resource.ReviewStatus
		wantRemarks string
		wantFld     string
	}{
		{name: "back to pending", status: resource.ReviewPending, wantFld: "status"},
		{name: "approve", status: resource.ReviewApproved, remarks: "verified", wantStatus: resource.ReviewApproved, wantRemarks: "verified"},
		{name: "approve again", status: resource.ReviewApproved, remarks: "ignored", wantStatus: resource.ReviewApproved, wantRemarks: "verified"},
		{name: "reject once settled", status: resource.ReviewRejected, wantFld: "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ReviewCertificate(ctx, cert.ID, tt.status, tt.remarks)
			if tt.wantFld != "" {
				assert.Equal(t, tt.wantFld, fieldOf(t, err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantRemarks, got.Remarks)
		})
	}

	pending, err := svc.Certificates.List(ctx, core.Filter{"status": resource.ReviewPending})
	require.NoError(t, err)
	assert.Empty(t, pending)
}
