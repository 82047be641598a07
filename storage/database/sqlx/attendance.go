package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/LukaszKielczewski66/fightclub/core/attendance"
)

type recordRow struct {
	SessionID string `db:"session_id"`
	MemberID  string `db:"member_id"`
	Status    string `db:"status"`
	MarkedBy  string `db:"marked_by"`
	MarkedAt  int64  `db:"marked_at"`
}

type attendanceRepository struct {
	db *sqlx.DB
}

func NewAttendanceRepository(db *sqlx.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) UpsertRecords(ctx context.Context, records []attendance.Record) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	q := repo.db.Rebind(`INSERT INTO attendance_records (session_id, member_id, status, marked_by, marked_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (session_id, member_id)
		DO UPDATE SET status = excluded.status, marked_by = excluded.marked_by, marked_at = excluded.marked_at`)
	for _, r := range records {
		if _, err = tx.ExecContext(ctx, q, r.SessionID, r.MemberID, string(r.Status), r.MarkedBy, toMillis(r.MarkedAt)); err != nil {
			return errors.Wrap(err, "upserting attendance record")
		}
	}
	return errors.Wrap(tx.Commit(), "committing attendance")
}

func (repo *attendanceRepository) QueryRecords(ctx context.Context, sessionIDs []string) ([]attendance.Record, error) {
	if len(sessionIDs) == 0 {
		return []attendance.Record{}, nil
	}
	q, args, err := sqlx.In(`SELECT session_id, member_id, status, marked_by, marked_at
		FROM attendance_records WHERE session_id IN (?)`, sessionIDs)
	if err != nil {
		return nil, errors.Wrap(err, "building attendance query")
	}
	var rows []recordRow
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting attendance records")
	}
	records := make([]attendance.Record, len(rows))
	for i, r := range rows {
		records[i] = attendance.Record{
			SessionID: r.SessionID,
			MemberID:  r.MemberID,
			Status:    attendance.Status(r.Status),
			MarkedBy:  r.MarkedBy,
			MarkedAt:  fromMillis(r.MarkedAt),
		}
	}
	return records, nil
}
