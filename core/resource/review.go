package resource

import (
	"context"
	"fmt"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
)

// ReviewStatus is the state of a submitted document awaiting approval.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

func (s ReviewStatus) IsValid() bool {
	switch s {
	case ReviewPending, ReviewApproved, ReviewRejected:
		return true
	}
	return false
}

// Review settles a pending document as approved or rejected, once.
// The document must store its state under "status" and its comment under "remarks".
func Review[T any, P interface {
	*T
	Document
}](ctx context.Context, svc *Service[T, P], id string, status ReviewStatus, remarks string) (*T, error) {
	if status != ReviewApproved && status != ReviewRejected {
		return nil, core.NewFieldError("status", fmt.Sprintf("must be one of %s %s", ReviewApproved, ReviewRejected))
	}
	var extra core.Fields
	if remarks != "" {
		extra = core.Fields{"remarks": remarks}
	}
	return svc.Transition(ctx, id, "status", string(ReviewPending), string(status), extra)
}
