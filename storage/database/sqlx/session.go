package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/LukaszKielczewski66/fightclub/core/session"
)

type sessionRow struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	Category    string `db:"category"`
	Level       string `db:"level"`
	TrainerID   string `db:"trainer_id"`
	TrainerName string `db:"trainer_name"`
	Capacity    int    `db:"capacity"`
	Reserved    int    `db:"reserved"`
	StartAt     int64  `db:"start_at"`
	EndAt       int64  `db:"end_at"`
	CreatedAt   int64  `db:"created_at"`
}

func (r sessionRow) toSession(participants []string) session.Session {
	if participants == nil {
		participants = []string{}
	}
	return session.Session{
		ID:           r.ID,
		Name:         r.Name,
		Category:     session.Category(r.Category),
		Level:        session.Level(r.Level),
		TrainerID:    r.TrainerID,
		TrainerName:  r.TrainerName,
		Capacity:     r.Capacity,
		StartAt:      fromMillis(r.StartAt),
		EndAt:        fromMillis(r.EndAt),
		Participants: participants,
		CreatedAt:    fromMillis(r.CreatedAt),
	}
}

type participantRow struct {
	SessionID string `db:"session_id"`
	MemberID  string `db:"member_id"`
}

const sessionColumns = "id, name, category, level, trainer_id, trainer_name, capacity, reserved, start_at, end_at, created_at"

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
}

type sessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) session.Repository {
	return &sessionRepository{db: db}
}

func joinAnd(conds []string) string {
	return strings.Join(conds, " AND ")
}

func (repo *sessionRepository) CreateSession(ctx context.Context, s session.Session) (session.Session, error) {
	s.ID = uuid.New().String()
	q := repo.db.Rebind(`INSERT INTO sessions (` + sessionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?)`)
	_, err := repo.db.ExecContext(ctx, q,
		s.ID, s.Name, string(s.Category), string(s.Level), s.TrainerID, s.TrainerName, s.Capacity,
		toMillis(s.StartAt), toMillis(s.EndAt), toMillis(s.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return session.Session{}, session.ErrDuplicate
		}
		return session.Session{}, errors.Wrap(err, "inserting session")
	}
	return repo.getSession(ctx, repo.db, s.ID)
}

func (repo *sessionRepository) GetSession(ctx context.Context, id string) (session.Session, error) {
	return repo.getSession(ctx, repo.db, id)
}

func (repo *sessionRepository) getSession(ctx context.Context, db queryer, id string) (session.Session, error) {
	var row sessionRow
	q := repo.db.Rebind(`SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?`)
	if err := sqlx.GetContext(ctx, db, &row, q, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return session.Session{}, session.ErrNotFound
		}
		return session.Session{}, errors.Wrap(err, "selecting session")
	}
	participants, err := repo.participants(ctx, db, id)
	if err != nil {
		return session.Session{}, err
	}
	return row.toSession(participants[id]), nil
}

// participants returns member ids per session id, in enrollment order.
func (repo *sessionRepository) participants(ctx context.Context, db queryer, ids ...string) (map[string][]string, error) {
	out := make(map[string][]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	q, args, err := sqlx.In(`SELECT session_id, member_id FROM session_participants
		WHERE session_id IN (?) ORDER BY enrolled_at, member_id`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "building participants query")
	}
	var rows []participantRow
	if err = sqlx.SelectContext(ctx, db, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting participants")
	}
	for _, r := range rows {
		out[r.SessionID] = append(out[r.SessionID], r.MemberID)
	}
	return out, nil
}

func (repo *sessionRepository) QuerySessions(ctx context.Context, filter session.QueryFilter) ([]session.Session, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.TrainerID != "" {
		where = append(where, "trainer_id = ?")
		args = append(args, filter.TrainerID)
	}
	if filter.MemberID != "" {
		where = append(where, "EXISTS (SELECT 1 FROM session_participants sp WHERE sp.session_id = sessions.id AND sp.member_id = ?)")
		args = append(args, filter.MemberID)
	}
	if !filter.StartFrom.IsZero() {
		where = append(where, "start_at >= ?")
		args = append(args, toMillis(filter.StartFrom))
	}
	if !filter.StartTo.IsZero() {
		where = append(where, "start_at < ?")
		args = append(args, toMillis(filter.StartTo))
	}
	if !filter.ActiveAt.IsZero() {
		where = append(where, "start_at <= ? AND end_at > ?")
		args = append(args, toMillis(filter.ActiveAt), toMillis(filter.ActiveAt))
	}
	if !filter.EndedBy.IsZero() {
		where = append(where, "end_at <= ?")
		args = append(args, toMillis(filter.EndedBy))
	}

	q := `SELECT ` + sessionColumns + ` FROM sessions`
	if len(where) > 0 {
		q += ` WHERE ` + joinAnd(where)
	}
	if filter.Latest {
		q += ` ORDER BY start_at DESC, id`
	} else {
		q += ` ORDER BY start_at ASC, id`
	}
	if filter.Limit > 0 {
		q += ` LIMIT ` + strconv.Itoa(filter.Limit)
	}

	var rows []sessionRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting sessions")
	}

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	participants, err := repo.participants(ctx, repo.db, ids...)
	if err != nil {
		return nil, err
	}

	sessions := make([]session.Session, len(rows))
	for i, r := range rows {
		sessions[i] = r.toSession(participants[r.ID])
	}
	return sessions, nil
}

func (repo *sessionRepository) HasOverlap(ctx context.Context, filter session.OverlapFilter) (bool, error) {
	where := []string{"start_at < ?", "end_at > ?"}
	args := []interface{}{toMillis(filter.End), toMillis(filter.Start)}
	if filter.TrainerID != "" {
		where = append(where, "trainer_id = ?")
		args = append(args, filter.TrainerID)
	}

	var ids []string
	q := repo.db.Rebind(`SELECT id FROM sessions WHERE ` + joinAnd(where) + ` LIMIT 1`)
	if err := repo.db.SelectContext(ctx, &ids, q, args...); err != nil {
		return false, errors.Wrap(err, "selecting overlapping sessions")
	}
	return len(ids) > 0, nil
}

// AddParticipant claims a seat and inserts the participant in one transaction.
// The guarded UPDATE serializes concurrent claims on the session row.
func (repo *sessionRepository) AddParticipant(ctx context.Context, sessionID, memberID string) (session.Session, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return session.Session{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, repo.db.Rebind(`UPDATE sessions SET reserved = reserved + 1
		WHERE id = ? AND reserved < capacity
		AND NOT EXISTS (SELECT 1 FROM session_participants WHERE session_id = ? AND member_id = ?)`),
		sessionID, sessionID, memberID)
	if err != nil {
		return session.Session{}, errors.Wrap(err, "claiming seat")
	}
	if n, err := res.RowsAffected(); err != nil {
		return session.Session{}, errors.Wrap(err, "claiming seat")
	} else if n == 0 {
		return session.Session{}, session.ErrConditionFailed
	}

	res, err = tx.ExecContext(ctx, repo.db.Rebind(`INSERT INTO session_participants (session_id, member_id, enrolled_at)
		VALUES (?, ?, ?) ON CONFLICT (session_id, member_id) DO NOTHING`),
		sessionID, memberID, toMillis(session.NowFunc()))
	if err != nil {
		return session.Session{}, errors.Wrap(err, "inserting participant")
	}
	if n, err := res.RowsAffected(); err != nil {
		return session.Session{}, errors.Wrap(err, "inserting participant")
	} else if n == 0 {
		return session.Session{}, session.ErrConditionFailed
	}

	sess, err := repo.getSession(ctx, tx, sessionID)
	if err != nil {
		return session.Session{}, err
	}
	return sess, errors.Wrap(tx.Commit(), "committing enrollment")
}

// RemoveParticipant deletes the participant and releases its seat in one transaction.
func (repo *sessionRepository) RemoveParticipant(ctx context.Context, sessionID, memberID string) (session.Session, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return session.Session{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, repo.db.Rebind(`DELETE FROM session_participants WHERE session_id = ? AND member_id = ?`),
		sessionID, memberID)
	if err != nil {
		return session.Session{}, errors.Wrap(err, "deleting participant")
	}
	if n, err := res.RowsAffected(); err != nil {
		return session.Session{}, errors.Wrap(err, "deleting participant")
	} else if n == 0 {
		return session.Session{}, session.ErrConditionFailed
	}

	if _, err = tx.ExecContext(ctx, repo.db.Rebind(`UPDATE sessions SET reserved = reserved - 1 WHERE id = ? AND reserved > 0`),
		sessionID); err != nil {
		return session.Session{}, errors.Wrap(err, "releasing seat")
	}

	sess, err := repo.getSession(ctx, tx, sessionID)
	if err != nil {
		return session.Session{}, err
	}
	return sess, errors.Wrap(tx.Commit(), "committing unenrollment")
}
