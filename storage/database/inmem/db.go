package inmemdb

import (
	"context"
	"sync"

	"github.com/LukaszKielczewski66/fightclub/core"
	"github.com/LukaszKielczewski66/fightclub/core/account"
	"github.com/LukaszKielczewski66/fightclub/core/attendance"
	"github.com/LukaszKielczewski66/fightclub/core/session"
)

// DB keeps every table behind a single lock, so each repository call is atomic.
type DB struct {
	mutex    sync.RWMutex
	accounts map[string]*account.Account
	sessions map[string]*session.Session
	records  map[recordKey]attendance.Record
}

type recordKey struct {
	sessionID string
	memberID  string
}

var _ core.Store = (*DB)(nil)

func New() *DB {
	return &DB{
		accounts: make(map[string]*account.Account),
		sessions: make(map[string]*session.Session),
		records:  make(map[recordKey]attendance.Record),
	}
}

func (db *DB) HealthCheck(context.Context) error { return nil }

func (db *DB) Close() error { return nil }
