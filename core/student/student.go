// Package student holds the student registry every other resource refers to.
package student

import (
	"context"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/resource"
)

const Collection = "students"

// Ref references a Student.
type Ref = resource.Ref[Student]

type Student struct {
	resource.Base `bson:",inline"`
	Name          string `bson:"name" json:"name" validate:"required"`
	RollNumber    string `bson:"rollNumber" json:"rollNumber" validate:"required"`
	Email         string `bson:"email,omitempty" json:"email,omitempty" validate:"omitempty,email"`
	Department    string `bson:"department,omitempty" json:"department,omitempty"`
	Year          int    `bson:"year,omitempty" json:"year,omitempty" validate:"omitempty,min=1,max=6"`
	Phone         string `bson:"phone,omitempty" json:"phone,omitempty" validate:"omitempty,max=20"`
}

var Definition = resource.Definition[Student]{
	Name:       "student",
	Collection: Collection,
	Unique:     []string{"rollNumber"},
	Filters:    []string{"department", "year"},
	Prepare: func(_ context.Context, s *Student) error {
		s.Name = core.CleanString(s.Name)
		s.RollNumber = core.CleanString(s.RollNumber)
		s.Email = core.CleanString(s.Email, true /* lower */)
		return nil
	},
}

type Service = resource.Service[Student, *Student]

func NewService(deps resource.Deps) *Service {
	return resource.NewService(Definition, deps)
}
