package inmemdb

import (
	"context"

	"github.com/LukaszKielczewski66/fightclub/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) UpsertRecords(_ context.Context, records []attendance.Record) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, r := range records {
		repo.db.records[recordKey{sessionID: r.SessionID, memberID: r.MemberID}] = r
	}
	return nil
}

func (repo *attendanceRepository) QueryRecords(_ context.Context, sessionIDs []string) ([]attendance.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	wanted := make(map[string]bool, len(sessionIDs))
	for _, id := range sessionIDs {
		wanted[id] = true
	}
	records := make([]attendance.Record, 0)
	for key, r := range repo.db.records {
		if wanted[key.sessionID] {
			records = append(records, r)
		}
	}
	return records, nil
}
