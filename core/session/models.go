package session

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/LukaszKielczewski66/fightclub/core"
)

type Category string

// Categories
const (
	CategoryBJJ   Category = "BJJ"
	CategoryMMA   Category = "MMA"
	CategoryCross Category = "Cross"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryBJJ, CategoryMMA, CategoryCross:
		return true
	default:
		return false
	}
}

type Level string

// Levels
const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

func (l Level) IsValid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	default:
		return false
	}
}

const (
	MinCapacity = 1
	MaxCapacity = 200
)

// Session is a scheduled class. Participants holds unique member ids, never more than Capacity.
type Session struct {
	ID           string
	Name         string
	Category     Category
	Level        Level
	TrainerID    string
	TrainerName  string // copied from the trainer account at creation
	Capacity     int
	StartAt      time.Time // UTC
	EndAt        time.Time // UTC
	Participants []string
	CreatedAt    time.Time
}

func (s Session) Reserved() int {
	return len(s.Participants)
}

func (s Session) IsFull() bool {
	return len(s.Participants) >= s.Capacity
}

func (s Session) HasParticipant(memberID string) bool {
	for _, id := range s.Participants {
		if id == memberID {
			return true
		}
	}
	return false
}

// IsLive reports whether start <= now < end.
func (s Session) IsLive(now time.Time) bool {
	return !now.Before(s.StartAt) && now.Before(s.EndAt)
}

// HasEnded reports whether now >= end.
func (s Session) HasEnded(now time.Time) bool {
	return !now.Before(s.EndAt)
}

func (s Session) View() View {
	ids := make([]string, len(s.Participants))
	copy(ids, s.Participants)
	return View{
		ID:             s.ID,
		Name:           s.Name,
		Category:       s.Category,
		Level:          s.Level,
		TrainerName:    s.TrainerName,
		Capacity:       s.Capacity,
		StartAt:        s.StartAt.UTC(),
		EndAt:          s.EndAt.UTC(),
		Reserved:       len(ids),
		ParticipantIDs: ids,
	}
}

func (s Session) Summary() Summary {
	return Summary{
		ID:       s.ID,
		Name:     s.Name,
		Category: s.Category,
		Level:    s.Level,
		StartAt:  s.StartAt.UTC(),
		EndAt:    s.EndAt.UTC(),
	}
}

// View is the public projection of a Session.
type View struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Category       Category  `json:"type"`
	Level          Level     `json:"level"`
	TrainerName    string    `json:"trainerName"`
	Capacity       int       `json:"capacity"`
	StartAt        time.Time `json:"startAt"`
	EndAt          time.Time `json:"endAt"`
	Reserved       int       `json:"reserved"`
	ParticipantIDs []string  `json:"participantsIds"`
}

// Summary is a View without trainer and participant details.
type Summary struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Category Category  `json:"type"`
	Level    Level     `json:"level"`
	StartAt  time.Time `json:"startAt"`
	EndAt    time.Time `json:"endAt"`
}

func Views(sessions []Session) []View {
	views := make([]View, len(sessions))
	for i, s := range sessions {
		views[i] = s.View()
	}
	return views
}

// NewSession contains information needed to schedule a new Session.
// WeekStart is any instant within the target week; the current week when empty.
type NewSession struct {
	Name        string   `json:"name" validate:"required,notblank,max=120"`
	Category    Category `json:"type" validate:"required,category"`
	Level       Level    `json:"level" validate:"required,level"`
	Capacity    int      `json:"capacity" validate:"required,min=1,max=200"`
	WeekStart   string   `json:"weekStart"`
	Weekday     *int     `json:"weekday" validate:"required,min=1,max=7"`
	StartHour   *int     `json:"startHour" validate:"required,min=0,max=23"`
	StartMinute *int     `json:"startMinute" validate:"omitempty,min=0,max=59"`
	EndHour     *int     `json:"endHour" validate:"required,min=0,max=23"`
	EndMinute   *int     `json:"endMinute" validate:"omitempty,min=0,max=59"`
	TrainerID   string   `json:"trainerId"`
}

func (ns *NewSession) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.TrainerID = core.CleanString(ns.TrainerID)
	ns.WeekStart = core.CleanString(ns.WeekStart)
	return validate.Struct(ns)
}

var weekStartLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

func parseWeekStart(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range weekStartLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("invalid weekStart %q", s)
}

// WeekMonday returns midnight of the Monday starting t's week in loc.
func WeekMonday(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	offset := int(t.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset = 6 // sunday
	}
	return time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, loc)
}

// Interval resolves the absolute [start, end) of the session in loc. now anchors an empty WeekStart.
// It expects a validated NewSession.
func (ns NewSession) Interval(now time.Time, loc *time.Location) (start, end time.Time, err error) {
	anchor := now
	if ns.WeekStart != "" {
		if anchor, err = parseWeekStart(ns.WeekStart, loc); err != nil {
			return start, end, core.NewValidationError(nil, core.FieldError{Field: "weekStart", Error: "invalid date"})
		}
	}

	monday := WeekMonday(anchor, loc)
	day := monday.Day() + *ns.Weekday - 1
	start = time.Date(monday.Year(), monday.Month(), day, *ns.StartHour, intOrZero(ns.StartMinute), 0, 0, loc)
	end = time.Date(monday.Year(), monday.Month(), day, *ns.EndHour, intOrZero(ns.EndMinute), 0, 0, loc)

	if !end.After(start) {
		return start, end, core.NewValidationError(nil, core.FieldError{Field: "endHour", Error: "end must be after start"})
	}
	return start.UTC(), end.UTC(), nil
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// QueryFilter applies AND operation on its set fields.
type QueryFilter struct {
	TrainerID string
	MemberID  string    // sessions with this participant
	StartFrom time.Time // start >= StartFrom
	StartTo   time.Time // start < StartTo
	ActiveAt  time.Time // start <= ActiveAt < end
	EndedBy   time.Time // end <= EndedBy
	Latest    bool      // order by start descending
	Limit     int
}

// OverlapFilter matches sessions whose [start, end) overlaps [Start, End). An empty TrainerID matches all trainers.
type OverlapFilter struct {
	TrainerID string
	Start     time.Time
	End       time.Time
}
