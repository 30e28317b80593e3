// Package project tracks student project groups, their submissions and evaluations.
package project

import (
	"context"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/resource"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/student"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/user"
)

// Collections
const (
	GroupCollection      = "project_groups"
	DocumentCollection   = "project_documents"
	EvaluationCollection = "project_evaluations"
)

type DocumentKind string

const (
	Proposal     DocumentKind = "proposal"
	Report       DocumentKind = "report"
	Presentation DocumentKind = "presentation"
	Code         DocumentKind = "code"
)

func (k DocumentKind) IsValid() bool {
	switch k {
	case Proposal, Report, Presentation, Code:
		return true
	}
	return false
}

type Phase string

const (
	PhaseProposal Phase = "proposal"
	PhaseMid      Phase = "mid"
	PhaseFinal    Phase = "final"
)

func (p Phase) IsValid() bool {
	return p == PhaseProposal || p == PhaseMid || p == PhaseFinal
}

type (
	GroupRef = resource.Ref[Group]

	Group struct {
		resource.Base `bson:",inline"`
		Name          string        `bson:"name" json:"name" validate:"required"`
		Title         string        `bson:"title" json:"title" validate:"required"`
		Members       []student.Ref `bson:"members" json:"members" validate:"required,min=1,dive,required"`
		Guide         user.Ref      `bson:"guide,omitempty" json:"guide"`
	}

	Document struct {
		resource.Base `bson:",inline"`
		Group         GroupRef              `bson:"group" json:"group" validate:"required"`
		Title         string                `bson:"title" json:"title" validate:"required"`
		Kind          DocumentKind          `bson:"kind" json:"kind" validate:"required,oneof=proposal report presentation code"`
		FileURL       string                `bson:"fileUrl" json:"fileUrl" validate:"required,url"`
		Status        resource.ReviewStatus `bson:"status" json:"status" validate:"required,oneof=pending approved rejected"`
		Remarks       string                `bson:"remarks,omitempty" json:"remarks,omitempty"`
	}

	Evaluation struct {
		resource.Base `bson:",inline"`
		Group         GroupRef `bson:"group" json:"group" validate:"required"`
		Evaluator     user.Ref `bson:"evaluator,omitempty" json:"evaluator"`
		Phase         Phase    `bson:"phase" json:"phase" validate:"required,oneof=proposal mid final"`
		Score         float64  `bson:"score" json:"score" validate:"min=0,max=100"`
		Remarks       string   `bson:"remarks,omitempty" json:"remarks,omitempty"`
	}
)

type Service struct {
	Groups      *resource.Service[Group, *Group]
	Documents   *resource.Service[Document, *Document]
	Evaluations *resource.Service[Evaluation, *Evaluation]
}

func groupLink(ref *GroupRef) resource.Link {
	return resource.One("group", GroupCollection, ref).Enforced()
}

func NewService(deps resource.Deps) *Service {
	return &Service{
		Groups: resource.NewService(resource.Definition[Group]{
			Name:       "project group",
			Collection: GroupCollection,
			Filters:    []string{"members", "guide"},
			Links: func(g *Group) []resource.Link {
				return []resource.Link{
					resource.Many("members", student.Collection, g.Members).Enforced(),
					resource.One("guide", user.Collection, &g.Guide),
				}
			},
		}, deps),

		Documents: resource.NewService(resource.Definition[Document]{
			Name:       "project document",
			Collection: DocumentCollection,
			Filters:    []string{"group", "kind", "status"},
			Prepare: func(_ context.Context, d *Document) error {
				d.Status = resource.ReviewPending
				return nil
			},
			Links: func(d *Document) []resource.Link { return []resource.Link{groupLink(&d.Group)} },
		}, deps),

		Evaluations: resource.NewService(resource.Definition[Evaluation]{
			Name:       "project evaluation",
			Collection: EvaluationCollection,
			Filters:    []string{"group", "phase", "evaluator"},
			Links: func(e *Evaluation) []resource.Link {
				return []resource.Link{
					groupLink(&e.Group),
					resource.One("evaluator", user.Collection, &e.Evaluator),
				}
			},
		}, deps),
	}
}

func (svc *Service) ReviewDocument(ctx context.Context, id string, status resource.ReviewStatus, remarks string) (*Document, error) {
	return resource.Review(ctx, svc.Documents, id, status, remarks)
}
