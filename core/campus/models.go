// Package campus covers hostels, the library, identity cards, hall tickets and certificates.
package campus

import (
	"time"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/resource"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/student"
)

// Collections
const (
	HostelCollection      = "hostels"
	BookCollection        = "library"
	IDCardCollection      = "idcards"
	HallTicketCollection  = "halltickets"
	CertificateCollection = "certificates"
)

type CardStatus string

const (
	CardActive   CardStatus = "Active"
	CardInactive CardStatus = "Inactive"
	CardLost     CardStatus = "Lost"
)

func (s CardStatus) IsValid() bool {
	switch s {
	case CardActive, CardInactive, CardLost:
		return true
	}
	return false
}

type TicketStatus string

const (
	TicketActive   TicketStatus = "Active"
	TicketInactive TicketStatus = "Inactive"
)

func (s TicketStatus) IsValid() bool {
	return s == TicketActive || s == TicketInactive
}

type (
	Hostel struct {
		resource.Base `bson:",inline"`
		Student       student.Ref `bson:"student" json:"student" validate:"required"`
		HostelName    string      `bson:"hostelName" json:"hostelName" validate:"required"`
		RoomNumber    string      `bson:"roomNumber" json:"roomNumber" validate:"required"`
		Block         string      `bson:"block,omitempty" json:"block,omitempty"`
		CheckInDate   time.Time   `bson:"checkInDate,omitempty" json:"checkInDate,omitzero"`
	}

	Book struct {
		resource.Base   `bson:",inline"`
		Title           string `bson:"title" json:"title" validate:"required"`
		Author          string `bson:"author" json:"author" validate:"required"`
		ISBN            string `bson:"isbn" json:"isbn" validate:"required"`
		Category        string `bson:"category,omitempty" json:"category,omitempty"`
		TotalCopies     int    `bson:"totalCopies" json:"totalCopies" validate:"min=1"`
		AvailableCopies *int   `bson:"availableCopies" json:"availableCopies" validate:"omitempty,min=0"`
	}

	IDCard struct {
		resource.Base `bson:",inline"`
		Student       student.Ref `bson:"student" json:"student" validate:"required"`
		CardNumber    string      `bson:"cardNumber" json:"cardNumber" validate:"required"`
		IssueDate     time.Time   `bson:"issueDate" json:"issueDate"`
		ValidUntil    time.Time   `bson:"validUntil" json:"validUntil" validate:"required"`
		BloodGroup    string      `bson:"bloodGroup,omitempty" json:"bloodGroup,omitempty" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
		Status        CardStatus  `bson:"status" json:"status" validate:"required,oneof=Active Inactive Lost"`
	}

	HallTicket struct {
		resource.Base `bson:",inline"`
		Student       student.Ref  `bson:"student" json:"student" validate:"required"`
		TicketNumber  string       `bson:"ticketNumber" json:"ticketNumber" validate:"required"`
		Exam          string       `bson:"exam" json:"exam" validate:"required"`
		ExamDate      time.Time    `bson:"examDate" json:"examDate" validate:"required"`
		Center        string       `bson:"center,omitempty" json:"center,omitempty"`
		SeatNumber    string       `bson:"seatNumber,omitempty" json:"seatNumber,omitempty"`
		Status        TicketStatus `bson:"status" json:"status" validate:"required,oneof=Active Inactive"`
	}

	Certificate struct {
		resource.Base `bson:",inline"`
		Student       student.Ref           `bson:"student" json:"student" validate:"required"`
		Title         string                `bson:"title" json:"title" validate:"required"`
		Issuer        string                `bson:"issuer,omitempty" json:"issuer,omitempty"`
		FileURL       string                `bson:"fileUrl,omitempty" json:"fileUrl,omitempty" validate:"omitempty,url"`
		Status        resource.ReviewStatus `bson:"status" json:"status" validate:"required,oneof=pending approved rejected"`
		Remarks       string                `bson:"remarks,omitempty" json:"remarks,omitempty"`
	}
)
