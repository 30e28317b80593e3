package finance_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/finance"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/mocks"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/student"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/testutil"
)

type fixture struct {
	fees   *finance.Service
	mailer *mocks.MockEmailService
	std    *student.Student
}

func setup(t *testing.T, email string) *fixture {
	deps, _ := testutil.NewDeps(t)
	students := student.NewService(deps)
	mailer := mocks.NewMockEmailService(gomock.NewController(t))

	std, err := students.Create(context.Background(), &student.Student{Name: "Ada Lovelace", RollNumber: "CS-001", Email: email})
	require.NoError(t, err)

	return &fixture{
		fees:   finance.NewService(deps, students, mailer),
		mailer: mailer,
		std:    std,
	}
}

func (f *fixture) newFee(amount float64) *finance.Fee {
	return &finance.Fee{
		Student:     student.Ref{ID: f.std.ID},
		Amount:      amount,
		DueDate:     time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		Description: "Term 1 tuition",
	}
}

func TestService_Create(t *testing.T) {
	f := setup(t, "ada@test.cd")
	ctx := context.Background()

	var sent []*core.EmailMessage
	f.mailer.EXPECT().SendMessages(gomock.Any()).Times(1).Do(func(msgs ...*core.EmailMessage) {
		sent = append(sent, msgs...)
	})

	fee, err := f.fees.Fees().Create(ctx, f.newFee(1200))
	require.NoError(t, err)
	assert.Equal(t, finance.Unpaid, fee.Status)
	assert.Nil(t, fee.PaidAt)

	require.Len(t, sent, 1)
	assert.Equal(t, "fee_due", sent[0].TemplateName)
	assert.Equal(t, "ada@test.cd", sent[0].To[0].Address)
	assert.Equal(t, "New fee issued", sent[0].Subject)
}

func TestService_Create_invalid(t *testing.T) {
	f := setup(t, "ada@test.cd")
	ctx := context.Background()
	// no mail expectation: a rejected fee sends nothing

	tests := []struct {
		name    string
		fee     *finance.Fee
		wantFld string
	}{
		{name: "zero amount", fee: f.newFee(0), wantFld: "amount"},
		{name: "negative amount", fee: f.newFee(-5), wantFld: "amount"},
		{name: "unknown student", fee: func() *finance.Fee {
			fee := f.newFee(10)
			fee.Student = student.Ref{ID: "ghost"}
			return fee
		}(), wantFld: "student"},
		{name: "bad status", fee: func() *finance.Fee {
			fee := f.newFee(10)
			fee.Status = "Waived"
			return fee
		}(), wantFld: "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.fees.Fees().Create(ctx, tt.fee)
			var verr *core.ValidationError
			require.ErrorAs(t, err, &verr)
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tt.wantFld, verr.Fields[0].Field)
		})
	}
}

func TestService_Create_paidUpfront(t *testing.T) {
	f := setup(t, "")
	// the student has no email: nothing to send

	fee := f.newFee(300)
	fee.Status = finance.Paid
	paidAt := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	fee.PaidAt = &paidAt

	created, err := f.fees.Fees().Create(context.Background(), fee)
	require.NoError(t, err)
	assert.Equal(t, finance.Paid, created.Status)
	require.NotNil(t, created.PaidAt)
	assert.True(t, paidAt.Equal(*created.PaidAt))
}

func TestService_Create_paidWithoutDate(t *testing.T) {
	f := setup(t, "ada@test.cd")
	now := time.Date(2026, 6, 2, 9, 15, 0, 0, time.UTC)
	testutil.FreezeTime(t, now)

	var sent []*core.EmailMessage
	f.mailer.EXPECT().SendMessages(gomock.Any()).Times(1).Do(func(msgs ...*core.EmailMessage) {
		sent = append(sent, msgs...)
	})

	fee := f.newFee(300)
	fee.Status = finance.Paid
	created, err := f.fees.Fees().Create(context.Background(), fee)
	require.NoError(t, err)
	require.NotNil(t, created.PaidAt, "a paid fee always has a payment time")
	assert.True(t, now.Equal(*created.PaidAt))

	require.Len(t, sent, 1)
	assert.Equal(t, "fee_receipt", sent[0].TemplateName)
}

func TestService_Create_unpaidDropsDate(t *testing.T) {
	f := setup(t, "")
	fee := f.newFee(300)
	paidAt := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	fee.PaidAt = &paidAt

	created, err := f.fees.Fees().Create(context.Background(), fee)
	require.NoError(t, err)
	assert.Equal(t, finance.Unpaid, created.Status)
	assert.Nil(t, created.PaidAt)
}

func TestService_Pay(t *testing.T) {
	f := setup(t, "ada@test.cd")
	ctx := context.Background()

	f.mailer.EXPECT().SendMessages(gomock.Any()) // fee_due
	fee, err := f.fees.Fees().Create(ctx, f.newFee(1200))
	require.NoError(t, err)

	paidAt := time.Date(2026, 6, 15, 14, 30, 0, 0, time.UTC)
	testutil.FreezeTime(t, paidAt)

	var receipt *core.EmailMessage
	f.mailer.EXPECT().SendMessages(gomock.Any()).Times(1).Do(func(msgs ...*core.EmailMessage) {
		receipt = msgs[0]
	})
	paid, err := f.fees.Pay(ctx, fee.ID)
	require.NoError(t, err)
	assert.Equal(t, finance.Paid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	assert.True(t, paidAt.Equal(*paid.PaidAt))
	require.NotNil(t, receipt)
	assert.Equal(t, "fee_receipt", receipt.TemplateName)

	// paying again is a no-op: same paidAt, no second receipt
	testutil.FreezeTime(t, paidAt.Add(time.Hour))
	again, err := f.fees.Pay(ctx, fee.ID)
	require.NoError(t, err)
	assert.True(t, paidAt.Equal(*again.PaidAt))

	list, err := f.fees.Fees().List(ctx, core.Filter{"status": finance.Paid})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ada Lovelace", list[0].Student.Doc.Name)
}

func TestService_Pay_notFound(t *testing.T) {
	f := setup(t, "ada@test.cd")
	_, err := f.fees.Pay(context.Background(), "nope")
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestFeeStatus_IsValid(t *testing.T) {
	assert.True(t, finance.Paid.IsValid())
	assert.True(t, finance.Unpaid.IsValid())
	assert.False(t, finance.FeeStatus("Waived").IsValid())
}
