package attendance

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/LukaszKielczewski66/fightclub/core"
	"github.com/LukaszKielczewski66/fightclub/core/account"
	"github.com/LukaszKielczewski66/fightclub/core/session"
)

const (
	DefaultPastLimit = 50
	MaxPastLimit     = 200

	unknownMemberName = "Member"
)

var (
	// errors
	ErrNoAccess    = core.NewPermissionError("no access to this session")
	ErrNotEditable = core.NewConflictError("attendance is editable only during the session")
)

var NowFunc = time.Now // mockable

type (
	Repository interface {
		// UpsertRecords writes each record keyed by (SessionID, MemberID), overwriting any previous status.
		UpsertRecords(ctx context.Context, records []Record) error
		QueryRecords(ctx context.Context, sessionIDs []string) ([]Record, error)
	}

	// SessionReader is the read side of the session store.
	SessionReader interface {
		GetSession(ctx context.Context, id string) (session.Session, error)
		QuerySessions(ctx context.Context, filter session.QueryFilter) ([]session.Session, error)
	}

	Service struct {
		repo      Repository
		sessions  SessionReader
		accounts  account.Directory
		pastLimit int
		log       core.Logger
	}
)

func NewService(repo Repository, sessions SessionReader, accounts account.Directory, pastLimit int, logger core.Logger) *Service {
	return &Service{
		repo:      repo,
		sessions:  sessions,
		accounts:  accounts,
		pastLimit: ClampLimit(pastLimit, DefaultPastLimit),
		log:       logger,
	}
}

// ClampLimit bounds limit to [1, MaxPastLimit]; non-positive values become def.
func ClampLimit(limit, def int) int {
	if limit <= 0 {
		limit = def
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxPastLimit {
		limit = MaxPastLimit
	}
	return limit
}

// ListActive returns the trainer's live sessions with every participant's status.
func (svc *Service) ListActive(ctx context.Context, trainerID string) ([]Details, error) {
	now := NowFunc().UTC()
	sessions, err := svc.sessions.QuerySessions(ctx, session.QueryFilter{TrainerID: trainerID, ActiveAt: now})
	if err != nil {
		return nil, errors.Wrap(err, "querying live sessions")
	}
	return svc.details(ctx, now, sessions...)
}

// ListPast returns summaries of the trainer's ended sessions, most recent first.
func (svc *Service) ListPast(ctx context.Context, trainerID string, limit int) ([]session.Summary, error) {
	sessions, err := svc.sessions.QuerySessions(ctx, session.QueryFilter{
		TrainerID: trainerID,
		EndedBy:   NowFunc().UTC(),
		Latest:    true,
		Limit:     ClampLimit(limit, svc.pastLimit),
	})
	if err != nil {
		return nil, errors.Wrap(err, "querying past sessions")
	}
	summaries := make([]session.Summary, len(sessions))
	for i, s := range sessions {
		summaries[i] = s.Summary()
	}
	return summaries, nil
}

// GetDetails returns the attendance sheet of a session owned by caller, or any session for admins.
func (svc *Service) GetDetails(ctx context.Context, sessionID string, caller account.Identity) (Details, error) {
	sess, err := svc.ownedSession(ctx, sessionID, caller)
	if err != nil {
		return Details{}, err
	}
	details, err := svc.details(ctx, NowFunc().UTC(), sess)
	if err != nil {
		return Details{}, err
	}
	return details[0], nil
}

// Update marks the given participants while the session is live. Updates for members not enrolled are dropped.
func (svc *Service) Update(ctx context.Context, sessionID string, caller account.Identity, updates []Update) (Details, error) {
	sess, err := svc.ownedSession(ctx, sessionID, caller)
	if err != nil {
		return Details{}, err
	}

	now := NowFunc().UTC()
	if PhaseOf(sess, now) != PhaseLive {
		return Details{}, ErrNotEditable
	}

	records := make([]Record, 0, len(updates))
	for _, u := range updates {
		if !u.Status.IsValid() || !sess.HasParticipant(u.MemberID) {
			continue
		}
		records = append(records, Record{
			SessionID: sess.ID,
			MemberID:  u.MemberID,
			Status:    u.Status,
			MarkedBy:  caller.ID,
			MarkedAt:  now,
		})
	}

	if len(records) > 0 {
		if err = svc.repo.UpsertRecords(ctx, records); err != nil {
			return Details{}, errors.Wrap(err, "upserting attendance")
		}
		svc.log.Info("attendance marked", map[string]interface{}{
			"session": sess.ID,
			"records": len(records),
			"dropped": len(updates) - len(records),
		}, caller)
	}

	details, err := svc.details(ctx, now, sess)
	if err != nil {
		return Details{}, err
	}
	return details[0], nil
}

func (svc *Service) ownedSession(ctx context.Context, sessionID string, caller account.Identity) (session.Session, error) {
	if sessionID == "" {
		return session.Session{}, session.ErrNotFound
	}
	sess, err := svc.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Cause(err) == session.ErrNotFound {
			return session.Session{}, session.ErrNotFound
		}
		return session.Session{}, errors.Wrap(err, "getting session")
	}
	if !caller.CanManageSession(sess.TrainerID) {
		return session.Session{}, ErrNoAccess
	}
	return sess, nil
}

// details builds the attendance sheets of sessions, in order.
func (svc *Service) details(ctx context.Context, now time.Time, sessions ...session.Session) ([]Details, error) {
	if len(sessions) == 0 {
		return []Details{}, nil
	}

	ids := make([]string, len(sessions))
	var memberIDs []string
	for i, s := range sessions {
		ids[i] = s.ID
		memberIDs = append(memberIDs, s.Participants...)
	}

	records, err := svc.repo.QueryRecords(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "querying attendance")
	}
	statuses := make(map[string]Status, len(records))
	for _, r := range records {
		statuses[r.SessionID+":"+r.MemberID] = r.Status
	}

	names, err := svc.accounts.Names(ctx, memberIDs)
	if err != nil {
		return nil, errors.Wrap(err, "resolving participant names")
	}

	out := make([]Details, len(sessions))
	for i, s := range sessions {
		participants := make([]Participant, len(s.Participants))
		for j, memberID := range s.Participants {
			p := Participant{ID: memberID, Name: names[memberID], Status: StatusAbsent}
			if p.Name == "" {
				p.Name = unknownMemberName
			}
			if st, ok := statuses[s.ID+":"+memberID]; ok {
				p.Status = st
			}
			participants[j] = p
		}
		out[i] = Details{
			Session:      s.Summary(),
			CanEdit:      PhaseOf(s, now) == PhaseLive,
			Participants: participants,
		}
	}
	return out, nil
}
