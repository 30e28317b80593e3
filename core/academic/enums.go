package academic

type EventCategory string

const (
	EventAcademic EventCategory = "academic"
	EventCultural EventCategory = "cultural"
	EventSports   EventCategory = "sports"
	EventWorkshop EventCategory = "workshop"
	EventOther    EventCategory = "other"
)

func (c EventCategory) IsValid() bool {
	switch c {
	case EventAcademic, EventCultural, EventSports, EventWorkshop, EventOther:
		return true
	}
	return false
}

type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
	SkillExpert       SkillLevel = "expert"
)

func (l SkillLevel) IsValid() bool {
	switch l {
	case SkillBeginner, SkillIntermediate, SkillAdvanced, SkillExpert:
		return true
	}
	return false
}

type MentoringMode string

const (
	MentoringOnline  MentoringMode = "online"
	MentoringOffline MentoringMode = "offline"
)

func (m MentoringMode) IsValid() bool {
	return m == MentoringOnline || m == MentoringOffline
}

type UploadKind string

const (
	UploadNotes UploadKind = "notes"
	UploadVideo UploadKind = "video"
	UploadLink  UploadKind = "link"
	UploadPaper UploadKind = "paper"
)

func (k UploadKind) IsValid() bool {
	switch k {
	case UploadNotes, UploadVideo, UploadLink, UploadPaper:
		return true
	}
	return false
}

type Audience string

const (
	AudienceAll      Audience = "all"
	AudienceStudents Audience = "students"
	AudienceTeachers Audience = "teachers"
	AudienceAdmins   Audience = "admins"
)

func (a Audience) IsValid() bool {
	switch a {
	case AudienceAll, AudienceStudents, AudienceTeachers, AudienceAdmins:
		return true
	}
	return false
}

type AttendanceStatus string

const (
	Present AttendanceStatus = "present"
	Absent  AttendanceStatus = "absent"
	Late    AttendanceStatus = "late"
	Excused AttendanceStatus = "excused"
)

func (s AttendanceStatus) IsValid() bool {
	switch s {
	case Present, Absent, Late, Excused:
		return true
	}
	return false
}
