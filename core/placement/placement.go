// Package placement tracks recruiting companies, student applications and selection rounds.
package placement

import (
	"context"
	"fmt"
	"time"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/resource"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/student"
)

// Collections
const (
	CompanyCollection     = "placement_companies"
	ApplicationCollection = "placement_applications"
	RoundCollection       = "placement_rounds"
)

type ApplicationStatus string

const (
	Applied     ApplicationStatus = "applied"
	Shortlisted ApplicationStatus = "shortlisted"
	Selected    ApplicationStatus = "selected"
	Rejected    ApplicationStatus = "rejected"
)

// ApplicationStatuses lists every status in pipeline order.
var ApplicationStatuses = []ApplicationStatus{Applied, Shortlisted, Selected, Rejected}

func (s ApplicationStatus) IsValid() bool {
	for _, st := range ApplicationStatuses {
		if s == st {
			return true
		}
	}
	return false
}

type RoundKind string

const (
	Aptitude        RoundKind = "aptitude"
	Technical       RoundKind = "technical"
	HR              RoundKind = "hr"
	GroupDiscussion RoundKind = "group_discussion"
)

func (k RoundKind) IsValid() bool {
	switch k {
	case Aptitude, Technical, HR, GroupDiscussion:
		return true
	}
	return false
}

type (
	CompanyRef = resource.Ref[Company]

	Company struct {
		resource.Base `bson:",inline"`
		Name          string    `bson:"name" json:"name" validate:"required"`
		Role          string    `bson:"role" json:"role" validate:"required"`
		CTC           float64   `bson:"ctc" json:"ctc" validate:"required,gt=0"`
		MinCGPA       float64   `bson:"minCgpa,omitempty" json:"minCgpa,omitempty" validate:"min=0,max=10"`
		DriveDate     time.Time `bson:"driveDate,omitempty" json:"driveDate,omitzero"`
		Location      string    `bson:"location,omitempty" json:"location,omitempty"`
	}

	Application struct {
		resource.Base `bson:",inline"`
		Student       student.Ref       `bson:"student" json:"student" validate:"required"`
		Company       CompanyRef        `bson:"company" json:"company" validate:"required"`
		Status        ApplicationStatus `bson:"status" json:"status" validate:"required,oneof=applied shortlisted selected rejected"`
		Remarks       string            `bson:"remarks,omitempty" json:"remarks,omitempty"`
	}

	Round struct {
		resource.Base `bson:",inline"`
		Company       CompanyRef    `bson:"company" json:"company" validate:"required"`
		Name          string        `bson:"name" json:"name" validate:"required"`
		Kind          RoundKind     `bson:"kind" json:"kind" validate:"required,oneof=aptitude technical hr group_discussion"`
		RoundDate     time.Time     `bson:"roundDate" json:"roundDate" validate:"required"`
		Shortlisted   []student.Ref `bson:"shortlisted,omitempty" json:"shortlisted"`
	}
)

type Service struct {
	Companies    *resource.Service[Company, *Company]
	Applications *resource.Service[Application, *Application]
	Rounds       *resource.Service[Round, *Round]
}

func NewService(deps resource.Deps) *Service {
	return &Service{
		Companies: resource.NewService(resource.Definition[Company]{
			Name:       "placement company",
			Collection: CompanyCollection,
			Unique:     []string{"name"},
			Filters:    []string{"role", "location"},
			Prepare: func(_ context.Context, c *Company) error {
				c.Name = core.CleanString(c.Name)
				return nil
			},
		}, deps),

		Applications: resource.NewService(resource.Definition[Application]{
			Name:       "placement application",
			Collection: ApplicationCollection,
			Filters:    []string{"student", "company", "status"},
			Prepare: func(_ context.Context, a *Application) error {
				if a.Status == "" {
					a.Status = Applied
				}
				return nil
			},
			Links: func(a *Application) []resource.Link {
				return []resource.Link{
					resource.One("student", student.Collection, &a.Student).Enforced(),
					resource.One("company", CompanyCollection, &a.Company).Enforced(),
				}
			},
		}, deps),

		Rounds: resource.NewService(resource.Definition[Round]{
			Name:       "placement round",
			Collection: RoundCollection,
			Filters:    []string{"company", "kind", "shortlisted"},
			Links: func(r *Round) []resource.Link {
				return []resource.Link{
					resource.One("company", CompanyCollection, &r.Company).Enforced(),
					resource.Many("shortlisted", student.Collection, r.Shortlisted),
				}
			},
		}, deps),
	}
}

// SetApplicationStatus moves an application to any status, with optional remarks.
func (svc *Service) SetApplicationStatus(ctx context.Context, id string, status ApplicationStatus, remarks string) (*Application, error) {
	if !status.IsValid() {
		return nil, core.NewFieldError("status", fmt.Sprintf("must be one of %v", ApplicationStatuses))
	}
	fields := core.Fields{"status": status}
	if remarks != "" {
		fields["remarks"] = remarks
	}
	return svc.Applications.Patch(ctx, id, fields)
}

// EnsureIndexes creates the unique indexes of the package resources.
func (svc *Service) EnsureIndexes(ctx context.Context) error {
	return resource.EnsureIndexes(ctx, svc.Companies)
}
