// Package academic covers the classroom side: assignments, events, polls, timetable and attendance,
// plus skills, mentoring, shared resources, analytics and notifications.
package academic

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/resource"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/student"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/user"
)

var errNoPeriod = errors.New("no period in session")

type Service struct {
	Assignments   *resource.Service[Assignment, *Assignment]
	Events        *resource.Service[Event, *Event]
	Polls         *resource.Service[Poll, *Poll]
	Skills        *resource.Service[Skill, *Skill]
	Mentoring     *resource.Service[Mentoring, *Mentoring]
	Uploads       *resource.Service[Upload, *Upload]
	Analytics     *resource.Service[Analytics, *Analytics]
	Notifications *resource.Service[Notification, *Notification]
	Timetable     *resource.Service[TimetableSlot, *TimetableSlot]
	Attendance    *resource.Service[Attendance, *Attendance]

	store core.DocumentStore
	loc   *time.Location
}

// NewService wires every academic resource. loc is the clock of the timetable.
func NewService(deps resource.Deps, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	svc := &Service{store: deps.Store, loc: loc}

	svc.Assignments = resource.NewService(resource.Definition[Assignment]{
		Name:       "assignment",
		Collection: AssignmentCollection,
		Event:      AssignmentUpdated,
		Filters:    []string{"subject", "className", "teacher"},
		Links: func(a *Assignment) []resource.Link {
			return []resource.Link{resource.One("teacher", user.Collection, &a.Teacher)}
		},
	}, deps)

	svc.Events = resource.NewService(resource.Definition[Event]{
		Name:       "event",
		Collection: EventCollection,
		Event:      EventUpdated,
		Filters:    []string{"category"},
		Prepare: func(_ context.Context, e *Event) error {
			if e.Category == "" {
				e.Category = EventOther
			}
			return nil
		},
	}, deps)

	svc.Polls = resource.NewService(resource.Definition[Poll]{
		Name:       "poll",
		Collection: PollCollection,
		Event:      PollUpdated,
		Prepare: func(_ context.Context, p *Poll) error {
			for i := range p.Options {
				p.Options[i].Votes = 0
			}
			return nil
		},
		Links: func(p *Poll) []resource.Link {
			return []resource.Link{resource.One("createdBy", user.Collection, &p.CreatedBy)}
		},
	}, deps)

	svc.Skills = resource.NewService(resource.Definition[Skill]{
		Name:       "skill",
		Collection: SkillCollection,
		Filters:    []string{"student", "level"},
		Links: func(s *Skill) []resource.Link {
			return []resource.Link{resource.One("student", student.Collection, &s.Student).Enforced()}
		},
	}, deps)

	svc.Mentoring = resource.NewService(resource.Definition[Mentoring]{
		Name:       "mentoring session",
		Collection: MentoringCollection,
		Filters:    []string{"student", "mentor", "mode"},
		Links: func(m *Mentoring) []resource.Link {
			return []resource.Link{
				resource.One("mentor", user.Collection, &m.Mentor),
				resource.One("student", student.Collection, &m.Student).Enforced(),
			}
		},
	}, deps)

	svc.Uploads = resource.NewService(resource.Definition[Upload]{
		Name:       "resource",
		Collection: UploadCollection,
		Filters:    []string{"subject", "kind"},
		Links: func(u *Upload) []resource.Link {
			return []resource.Link{resource.One("uploadedBy", user.Collection, &u.UploadedBy)}
		},
	}, deps)

	svc.Analytics = resource.NewService(resource.Definition[Analytics]{
		Name:       "analytics record",
		Collection: AnalyticsCollection,
		Filters:    []string{"metric", "period", "student"},
		Links: func(a *Analytics) []resource.Link {
			return []resource.Link{resource.One("student", student.Collection, &a.Student)}
		},
	}, deps)

	svc.Notifications = resource.NewService(resource.Definition[Notification]{
		Name:       "notification",
		Collection: NotificationCollection,
		Filters:    []string{"audience"},
		Prepare: func(_ context.Context, n *Notification) error {
			if n.Audience == "" {
				n.Audience = AudienceAll
			}
			return nil
		},
	}, deps)

	svc.Timetable = resource.NewService(resource.Definition[TimetableSlot]{
		Name:       "timetable slot",
		Collection: TimetableCollection,
		Filters:    []string{"className", "day", "teacher"},
		Prepare: func(_ context.Context, s *TimetableSlot) error {
			s.ClassName = core.CleanString(s.ClassName)
			return nil
		},
		Check: svc.checkClash,
		Links: func(s *TimetableSlot) []resource.Link {
			return []resource.Link{resource.One("teacher", user.Collection, &s.Teacher)}
		},
	}, deps)

	svc.Attendance = resource.NewService(resource.Definition[Attendance]{
		Name:       "attendance record",
		Collection: AttendanceCollection,
		Filters:    []string{"student", "className", "subject", "status"},
		Prepare:    svc.prepareAttendance,
		Links: func(a *Attendance) []resource.Link {
			return []resource.Link{
				resource.One("student", student.Collection, &a.Student).Enforced(),
				resource.One("markedBy", user.Collection, &a.MarkedBy),
			}
		},
	}, deps)

	return svc
}

// Vote atomically adds one vote to the option at index.
func (svc *Service) Vote(ctx context.Context, pollID string, index int) (*Poll, error) {
	poll, err := svc.Polls.Lookup(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if !poll.ClosesAt.IsZero() && core.NowFunc().After(poll.ClosesAt) {
		return nil, core.NewFieldError("poll", "voting is closed")
	}
	return svc.Polls.Increment(ctx, pollID, "options", index, "votes")
}

// CurrentPeriod returns the slot of className in session at `at`.
func (svc *Service) CurrentPeriod(ctx context.Context, className string, at time.Time) (*TimetableSlot, error) {
	local := at.In(svc.loc)
	slots, err := svc.Timetable.List(ctx, core.Filter{
		"className": core.CleanString(className),
		"day":       local.Weekday().String(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "listing timetable")
	}
	hhmm := local.Format("15:04")
	for _, slot := range slots {
		if slot.inSession(hhmm) {
			return slot, nil
		}
	}
	return nil, errNoPeriod
}

// IsNoPeriod reports whether err means no slot is in session.
func IsNoPeriod(err error) bool {
	return errors.Is(err, errNoPeriod)
}

func (svc *Service) checkClash(ctx context.Context, slot *TimetableSlot) error {
	if slot.EndTime <= slot.StartTime {
		return core.NewFieldError("endTime", "endTime must be after startTime")
	}

	sameClass, err := svc.Timetable.List(ctx, core.Filter{"className": slot.ClassName, "day": slot.Day})
	if err != nil {
		return errors.Wrap(err, "listing class timetable")
	}
	for _, other := range sameClass {
		if slot.overlaps(other) {
			return core.NewFieldError("startTime", fmt.Sprintf(
				"%s already has %s from %s to %s on %s", slot.ClassName, other.Subject, other.StartTime, other.EndTime, slot.Day,
			))
		}
	}

	if slot.Teacher.IsZero() {
		return nil
	}
	sameTeacher, err := svc.Timetable.List(ctx, core.Filter{"teacher": slot.Teacher.ID, "day": slot.Day})
	if err != nil {
		return errors.Wrap(err, "listing teacher timetable")
	}
	for _, other := range sameTeacher {
		if slot.overlaps(other) {
			return core.NewFieldError("teacher", fmt.Sprintf(
				"teacher is already teaching %s from %s to %s on %s", other.ClassName, other.StartTime, other.EndTime, slot.Day,
			))
		}
	}
	return nil
}

// prepareAttendance defaults the date to now and the subject to the period in session.
func (svc *Service) prepareAttendance(ctx context.Context, a *Attendance) error {
	a.ClassName = core.CleanString(a.ClassName)
	if a.Date.IsZero() {
		a.Date = core.NowFunc()
	}
	if a.Status == "" {
		a.Status = Present
	}
	if a.Subject != "" || a.ClassName == "" {
		return nil
	}

	slot, err := svc.CurrentPeriod(ctx, a.ClassName, a.Date)
	if err != nil {
		if IsNoPeriod(err) {
			return core.NewFieldError("subject", fmt.Sprintf("no period of %s is in session", a.ClassName))
		}
		return err
	}
	a.Subject = slot.Subject
	return nil
}
