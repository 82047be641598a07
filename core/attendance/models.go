package attendance

import (
	"time"

	"github.com/LukaszKielczewski66/fightclub/core/session"
)

type Status string

// Statuses
const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
)

func (s Status) IsValid() bool {
	return s == StatusPresent || s == StatusAbsent
}

// Record is the attendance of one participant of one session. A participant without a Record is absent.
type Record struct {
	SessionID string
	MemberID  string
	Status    Status
	MarkedBy  string
	MarkedAt  time.Time
}

// Phase is the editability of a session's attendance, derived from the clock.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseLive
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseLive:
		return "live"
	case PhaseEnded:
		return "ended"
	default:
		return "not_started"
	}
}

func PhaseOf(s session.Session, now time.Time) Phase {
	switch {
	case now.Before(s.StartAt):
		return PhaseNotStarted
	case now.Before(s.EndAt):
		return PhaseLive
	default:
		return PhaseEnded
	}
}

type Participant struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status Status `json:"status"`
}

// Details is the attendance sheet of one session.
type Details struct {
	Session      session.Summary `json:"session"`
	CanEdit      bool            `json:"canEdit"`
	Participants []Participant   `json:"participants"`
}

// Update sets the status of one participant. MemberID keeps the "userId" wire name.
type Update struct {
	MemberID string `json:"userId"`
	Status   Status `json:"status"`
}

// UpdateRequest is the body of an attendance update.
type UpdateRequest struct {
	Updates []Update `json:"updates" validate:"required"`
}

// Normalize drops malformed items, keeping the last update per member.
func (ur UpdateRequest) Normalize() []Update {
	idx := make(map[string]int, len(ur.Updates))
	out := make([]Update, 0, len(ur.Updates))
	for _, u := range ur.Updates {
		if u.MemberID == "" || !u.Status.IsValid() {
			continue
		}
		if i, ok := idx[u.MemberID]; ok {
			out[i] = u
			continue
		}
		idx[u.MemberID] = len(out)
		out = append(out, u)
	}
	return out
}
