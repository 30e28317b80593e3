// Package finance tracks the fees charged to students.
package finance

import (
	"context"
	"net/mail"
	"time"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/resource"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/student"
)

const Collection = "fees"

type FeeStatus string

const (
	Unpaid FeeStatus = "Unpaid"
	Paid   FeeStatus = "Paid"
)

func (s FeeStatus) IsValid() bool {
	return s == Unpaid || s == Paid
}

type Fee struct {
	resource.Base `bson:",inline"`
	Student       student.Ref `bson:"student" json:"student" validate:"required"`
	Amount        float64     `bson:"amount" json:"amount" validate:"required,gt=0"`
	DueDate       time.Time   `bson:"dueDate" json:"dueDate" validate:"required"`
	Description   string      `bson:"description,omitempty" json:"description,omitempty"`
	Status        FeeStatus   `bson:"status" json:"status" validate:"required,oneof=Unpaid Paid"`
	PaidAt        *time.Time  `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
}

// email templates
const (
	feeDueTemplate     = "fee_due"
	feeReceiptTemplate = "fee_receipt"
)

type noticeData struct {
	StudentName string
	FeeID       string
	Amount      float64
	Description string
	DueDate     time.Time
	PaidAt      time.Time
}

type Service struct {
	fees     *resource.Service[Fee, *Fee]
	students *student.Service
	mailer   core.EmailService
}

// NewService returns the fee service. Notices are mailed to students through mailer.
func NewService(deps resource.Deps, students *student.Service, mailer core.EmailService) *Service {
	svc := &Service{students: students, mailer: mailer}
	svc.fees = resource.NewService(resource.Definition[Fee]{
		Name:       "fee",
		Collection: Collection,
		Filters:    []string{"student", "status"},
		Prepare: func(_ context.Context, f *Fee) error {
			if f.Status == "" {
				f.Status = Unpaid
			}
			switch {
			case f.Status == Unpaid:
				f.PaidAt = nil
			case f.Status == Paid && f.PaidAt == nil:
				now := core.NowFunc()
				f.PaidAt = &now
			}
			return nil
		},
		Links: func(f *Fee) []resource.Link {
			return []resource.Link{resource.One("student", student.Collection, &f.Student).Enforced()}
		},
		AfterCreate: func(ctx context.Context, f *Fee) {
			if f.Status == Paid {
				svc.notify(ctx, f, feeReceiptTemplate, "Payment received")
				return
			}
			svc.notify(ctx, f, feeDueTemplate, "New fee issued")
		},
	}, deps)
	return svc
}

// Fees exposes the generic operations.
func (svc *Service) Fees() *resource.Service[Fee, *Fee] {
	return svc.fees
}

// Pay marks an unpaid fee as paid now. Paying a paid fee returns it unchanged.
func (svc *Service) Pay(ctx context.Context, id string) (*Fee, error) {
	now := core.NowFunc()
	fee, err := svc.fees.Transition(ctx, id, "status", string(Unpaid), string(Paid), core.Fields{"paidAt": now})
	if err != nil {
		return nil, err
	}
	if fee.PaidAt != nil && fee.PaidAt.Equal(now) {
		svc.notify(ctx, fee, feeReceiptTemplate, "Payment received")
	}
	return fee, nil
}

func (svc *Service) notify(ctx context.Context, fee *Fee, tmpl, subject string) {
	if svc.mailer == nil {
		return
	}
	std, err := svc.students.Lookup(ctx, fee.Student.ID)
	if err != nil || std.Email == "" {
		return
	}

	data := noticeData{
		StudentName: std.Name,
		FeeID:       fee.ID,
		Amount:      fee.Amount,
		Description: fee.Description,
		DueDate:     fee.DueDate,
	}
	if fee.PaidAt != nil {
		data.PaidAt = *fee.PaidAt
	}
	svc.mailer.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: std.Name, Address: std.Email}},
		Subject:      subject,
		TemplateName: tmpl,
		TemplateData: data,
	})
}
