package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/LukaszKielczewski66/fightclub/core"
	"github.com/LukaszKielczewski66/fightclub/core/session"
)

type sessionRepository struct {
	db *DB
}

func NewSessionRepository(db *DB) session.Repository {
	return &sessionRepository{db: db}
}

func copySession(s *session.Session) session.Session {
	cp := *s
	cp.Participants = append([]string{}, s.Participants...)
	return cp
}

func (repo *sessionRepository) CreateSession(_ context.Context, s session.Session) (session.Session, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, other := range repo.db.sessions {
		if other.TrainerID == s.TrainerID && other.StartAt.Equal(s.StartAt) && other.Name == s.Name {
			return session.Session{}, session.ErrDuplicate
		}
	}
	s.ID = uuid.New().String()
	s.Participants = []string{}
	repo.db.sessions[s.ID] = &s
	return copySession(&s), nil
}

func (repo *sessionRepository) GetSession(_ context.Context, id string) (session.Session, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.sessions[id]; ok {
		return copySession(s), nil
	}
	return session.Session{}, session.ErrNotFound
}

func matches(s *session.Session, f session.QueryFilter) bool {
	switch {
	case f.TrainerID != "" && s.TrainerID != f.TrainerID:
		return false
	case f.MemberID != "" && !s.HasParticipant(f.MemberID):
		return false
	case !f.StartFrom.IsZero() && s.StartAt.Before(f.StartFrom):
		return false
	case !f.StartTo.IsZero() && !s.StartAt.Before(f.StartTo):
		return false
	case !f.ActiveAt.IsZero() && !s.IsLive(f.ActiveAt):
		return false
	case !f.EndedBy.IsZero() && !s.HasEnded(f.EndedBy):
		return false
	}
	return true
}

func (repo *sessionRepository) QuerySessions(_ context.Context, filter session.QueryFilter) ([]session.Session, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	sessions := make([]session.Session, 0)
	for _, s := range repo.db.sessions {
		if matches(s, filter) {
			sessions = append(sessions, copySession(s))
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		if filter.Latest {
			return sessions[i].StartAt.After(sessions[j].StartAt)
		}
		return sessions[i].StartAt.Before(sessions[j].StartAt)
	})
	if filter.Limit > 0 && len(sessions) > filter.Limit {
		sessions = sessions[:filter.Limit]
	}
	return sessions, nil
}

func (repo *sessionRepository) HasOverlap(_ context.Context, filter session.OverlapFilter) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, s := range repo.db.sessions {
		if filter.TrainerID != "" && s.TrainerID != filter.TrainerID {
			continue
		}
		if core.Overlaps(s.StartAt, s.EndAt, filter.Start, filter.End) {
			return true, nil
		}
	}
	return false, nil
}

func (repo *sessionRepository) AddParticipant(_ context.Context, sessionID, memberID string) (session.Session, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	s, ok := repo.db.sessions[sessionID]
	if !ok || s.HasParticipant(memberID) || s.IsFull() {
		return session.Session{}, session.ErrConditionFailed
	}
	s.Participants = append(s.Participants, memberID)
	return copySession(s), nil
}

func (repo *sessionRepository) RemoveParticipant(_ context.Context, sessionID, memberID string) (session.Session, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	s, ok := repo.db.sessions[sessionID]
	if !ok {
		return session.Session{}, session.ErrConditionFailed
	}
	for i, id := range s.Participants {
		if id == memberID {
			s.Participants = append(s.Participants[:i], s.Participants[i+1:]...)
			return copySession(s), nil
		}
	}
	return session.Session{}, session.ErrConditionFailed
}
