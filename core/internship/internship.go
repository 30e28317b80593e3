// Package internship tracks internship batches, host companies and the documents students submit.
package internship

import (
	"context"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/resource"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/student"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/user"
)

// Collections
const (
	BatchCollection    = "internship_batches"
	CompanyCollection  = "internship_companies"
	DocumentCollection = "internship_documents"
)

type DocumentKind string

const (
	OfferLetter DocumentKind = "offer_letter"
	Report      DocumentKind = "report"
	Certificate DocumentKind = "certificate"
	NOC         DocumentKind = "noc"
)

func (k DocumentKind) IsValid() bool {
	switch k {
	case OfferLetter, Report, Certificate, NOC:
		return true
	}
	return false
}

type (
	Batch struct {
		resource.Base `bson:",inline"`
		Name          string        `bson:"name" json:"name" validate:"required"`
		Year          int           `bson:"year" json:"year" validate:"required,min=1900"`
		Students      []student.Ref `bson:"students" json:"students" validate:"dive,required"`
		Coordinator   user.Ref      `bson:"coordinator,omitempty" json:"coordinator"`
	}

	CompanyRef = resource.Ref[Company]

	Company struct {
		resource.Base `bson:",inline"`
		Name          string  `bson:"name" json:"name" validate:"required"`
		Website       string  `bson:"website,omitempty" json:"website,omitempty" validate:"omitempty,url"`
		ContactEmail  string  `bson:"contactEmail,omitempty" json:"contactEmail,omitempty" validate:"omitempty,email"`
		Location      string  `bson:"location,omitempty" json:"location,omitempty"`
		Stipend       float64 `bson:"stipend,omitempty" json:"stipend,omitempty" validate:"min=0"`
	}

	Document struct {
		resource.Base `bson:",inline"`
		Student       student.Ref           `bson:"student" json:"student" validate:"required"`
		Company       CompanyRef            `bson:"company,omitempty" json:"company"`
		Batch         resource.Ref[Batch]   `bson:"batch,omitempty" json:"batch"`
		Kind          DocumentKind          `bson:"kind" json:"kind" validate:"required,oneof=offer_letter report certificate noc"`
		FileURL       string                `bson:"fileUrl" json:"fileUrl" validate:"required,url"`
		Status        resource.ReviewStatus `bson:"status" json:"status" validate:"required,oneof=pending approved rejected"`
		Remarks       string                `bson:"remarks,omitempty" json:"remarks,omitempty"`
	}
)

type Service struct {
	Batches   *resource.Service[Batch, *Batch]
	Companies *resource.Service[Company, *Company]
	Documents *resource.Service[Document, *Document]
}

func NewService(deps resource.Deps) *Service {
	return &Service{
		Batches: resource.NewService(resource.Definition[Batch]{
			Name:       "internship batch",
			Collection: BatchCollection,
			Filters:    []string{"year", "students", "coordinator"},
			Prepare: func(_ context.Context, b *Batch) error {
				if b.Students == nil {
					b.Students = []student.Ref{}
				}
				return nil
			},
			Links: func(b *Batch) []resource.Link {
				return []resource.Link{
					resource.Many("students", student.Collection, b.Students).Enforced(),
					resource.One("coordinator", user.Collection, &b.Coordinator),
				}
			},
		}, deps),

		Companies: resource.NewService(resource.Definition[Company]{
			Name:       "internship company",
			Collection: CompanyCollection,
			Unique:     []string{"name"},
			Filters:    []string{"location"},
			Prepare: func(_ context.Context, c *Company) error {
				c.Name = core.CleanString(c.Name)
				return nil
			},
		}, deps),

		Documents: resource.NewService(resource.Definition[Document]{
			Name:       "internship document",
			Collection: DocumentCollection,
			Filters:    []string{"student", "company", "batch", "kind", "status"},
			Prepare: func(_ context.Context, d *Document) error {
				d.Status = resource.ReviewPending
				return nil
			},
			Links: func(d *Document) []resource.Link {
				return []resource.Link{
					resource.One("student", student.Collection, &d.Student).Enforced(),
					resource.One("company", CompanyCollection, &d.Company),
					resource.One("batch", BatchCollection, &d.Batch),
				}
			},
		}, deps),
	}
}

func (svc *Service) ReviewDocument(ctx context.Context, id string, status resource.ReviewStatus, remarks string) (*Document, error) {
	return resource.Review(ctx, svc.Documents, id, status, remarks)
}

// EnsureIndexes creates the unique indexes of the package resources.
func (svc *Service) EnsureIndexes(ctx context.Context) error {
	return resource.EnsureIndexes(ctx, svc.Companies)
}
