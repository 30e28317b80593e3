package academic

import (
	"time"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/resource"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/student"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/user"
)

// Collections
const (
	AssignmentCollection   = "assignments"
	EventCollection        = "events"
	PollCollection         = "polls"
	SkillCollection        = "skills"
	MentoringCollection    = "mentoring"
	UploadCollection       = "resources"
	AnalyticsCollection    = "analytics"
	NotificationCollection = "notifications"
	TimetableCollection    = "timetable"
	AttendanceCollection   = "attendance"
)

// Realtime events
const (
	AssignmentUpdated = "assignmentUpdated"
	EventUpdated      = "eventUpdated"
	PollUpdated       = "pollUpdated"
)

type (
	Assignment struct {
		resource.Base `bson:",inline"`
		Title         string    `bson:"title" json:"title" validate:"required"`
		Subject       string    `bson:"subject" json:"subject" validate:"required"`
		Description   string    `bson:"description,omitempty" json:"description,omitempty"`
		DueDate       time.Time `bson:"dueDate" json:"dueDate" validate:"required"`
		ClassName     string    `bson:"className,omitempty" json:"className,omitempty"`
		Teacher       user.Ref  `bson:"teacher,omitempty" json:"teacher"`
		Attachments   []string  `bson:"attachments,omitempty" json:"attachments,omitempty" validate:"omitempty,dive,url"`
	}

	Event struct {
		resource.Base `bson:",inline"`
		Title         string        `bson:"title" json:"title" validate:"required"`
		Date          time.Time     `bson:"date" json:"date" validate:"required"`
		Description   string        `bson:"description,omitempty" json:"description,omitempty"`
		Venue         string        `bson:"venue,omitempty" json:"venue,omitempty"`
		Category      EventCategory `bson:"category" json:"category" validate:"required,oneof=academic cultural sports workshop other"`
		Organizer     string        `bson:"organizer,omitempty" json:"organizer,omitempty"`
	}

	PollOption struct {
		Text  string `bson:"text" json:"text" validate:"required"`
		Votes int    `bson:"votes" json:"votes"`
	}

	Poll struct {
		resource.Base `bson:",inline"`
		Question      string       `bson:"question" json:"question" validate:"required"`
		Options       []PollOption `bson:"options" json:"options" validate:"required,min=2,dive"`
		CreatedBy     user.Ref     `bson:"createdBy,omitempty" json:"createdBy"`
		ClosesAt      time.Time    `bson:"closesAt,omitempty" json:"closesAt,omitzero"`
	}

	Skill struct {
		resource.Base `bson:",inline"`
		Student       student.Ref `bson:"student" json:"student" validate:"required"`
		Name          string      `bson:"name" json:"name" validate:"required"`
		Level         SkillLevel  `bson:"level" json:"level" validate:"required,oneof=beginner intermediate advanced expert"`
	}

	Mentoring struct {
		resource.Base `bson:",inline"`
		Mentor        user.Ref      `bson:"mentor,omitempty" json:"mentor"`
		Student       student.Ref   `bson:"student" json:"student" validate:"required"`
		Topic         string        `bson:"topic" json:"topic" validate:"required"`
		ScheduledAt   time.Time     `bson:"scheduledAt" json:"scheduledAt" validate:"required"`
		Notes         string        `bson:"notes,omitempty" json:"notes,omitempty"`
		Mode          MentoringMode `bson:"mode" json:"mode" validate:"required,oneof=online offline"`
	}

	// Upload is a shared learning resource (notes, videos, papers).
	Upload struct {
		resource.Base `bson:",inline"`
		Title         string     `bson:"title" json:"title" validate:"required"`
		URL           string     `bson:"url" json:"url" validate:"required,url"`
		Subject       string     `bson:"subject,omitempty" json:"subject,omitempty"`
		Kind          UploadKind `bson:"kind" json:"kind" validate:"required,oneof=notes video link paper"`
		UploadedBy    user.Ref   `bson:"uploadedBy,omitempty" json:"uploadedBy"`
	}

	Analytics struct {
		resource.Base `bson:",inline"`
		Metric        string      `bson:"metric" json:"metric" validate:"required"`
		Value         float64     `bson:"value" json:"value"`
		Period        string      `bson:"period" json:"period" validate:"required"`
		Student       student.Ref `bson:"student,omitempty" json:"student"`
	}

	Notification struct {
		resource.Base `bson:",inline"`
		Title         string   `bson:"title" json:"title" validate:"required"`
		Message       string   `bson:"message" json:"message" validate:"required"`
		Audience      Audience `bson:"audience" json:"audience" validate:"required,oneof=all students teachers admins"`
	}

	TimetableSlot struct {
		resource.Base `bson:",inline"`
		ClassName     string   `bson:"className" json:"className" validate:"required"`
		Day           string   `bson:"day" json:"day" validate:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
		StartTime     string   `bson:"startTime" json:"startTime" validate:"required,hhmm"`
		EndTime       string   `bson:"endTime" json:"endTime" validate:"required,hhmm"`
		Subject       string   `bson:"subject" json:"subject" validate:"required"`
		Teacher       user.Ref `bson:"teacher,omitempty" json:"teacher"`
		Room          string   `bson:"room,omitempty" json:"room,omitempty"`
	}

	Attendance struct {
		resource.Base `bson:",inline"`
		Student       student.Ref      `bson:"student" json:"student" validate:"required"`
		ClassName     string           `bson:"className" json:"className" validate:"required"`
		Subject       string           `bson:"subject" json:"subject" validate:"required"`
		Date          time.Time        `bson:"date" json:"date" validate:"required"`
		Status        AttendanceStatus `bson:"status" json:"status" validate:"required,oneof=present absent late excused"`
		MarkedBy      user.Ref         `bson:"markedBy,omitempty" json:"markedBy"`
	}
)

// overlaps reports whether two slots of the same day share any minute.
func (s *TimetableSlot) overlaps(o *TimetableSlot) bool {
	return s.StartTime < o.EndTime && o.StartTime < s.EndTime
}

// inSession reports whether hhmm falls in [StartTime, EndTime).
func (s *TimetableSlot) inSession(hhmm string) bool {
	return s.StartTime <= hhmm && hhmm < s.EndTime
}
