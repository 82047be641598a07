// Package storage selects the repository implementations for the configured database engine.
package storage

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/LukaszKielczewski66/fightclub/core"
	"github.com/LukaszKielczewski66/fightclub/core/account"
	"github.com/LukaszKielczewski66/fightclub/core/attendance"
	"github.com/LukaszKielczewski66/fightclub/core/session"
	"github.com/LukaszKielczewski66/fightclub/storage/database"
	"github.com/LukaszKielczewski66/fightclub/storage/database/mongo"
	"github.com/LukaszKielczewski66/fightclub/storage/database/sqlx"
)

type Repositories struct {
	Store      core.Store
	SQL        *sqlx.DB // nil for mongo
	Accounts   account.Repository
	Sessions   session.Repository
	Attendance attendance.Repository
}

// Open connects to the configured engine. With migrate set, SQL engines are created and migrated
// and mongo indexes are ensured.
func Open(ctx context.Context, conf *core.Config, migrate bool) (*Repositories, error) {
	if conf.Database.Engine == core.EngineMongo {
		store, err := mongorepos.Connect(ctx, conf.Database.URI, conf.Database.Name)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err = store.EnsureIndexes(ctx); err != nil {
				_ = store.Close()
				return nil, err
			}
		}
		return &Repositories{
			Store:      store,
			Accounts:   mongorepos.NewAccountRepository(store),
			Sessions:   mongorepos.NewSessionRepository(store),
			Attendance: mongorepos.NewAttendanceRepository(store),
		}, nil
	}

	if migrate {
		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			return nil, errors.Wrap(err, "creating database")
		}
	}
	db, err := database.Open(conf)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err = database.Ping(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if migrate {
		if err = database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return &Repositories{
		Store:      sqlxrepos.NewStore(db),
		SQL:        db,
		Accounts:   sqlxrepos.NewAccountRepository(db),
		Sessions:   sqlxrepos.NewSessionRepository(db),
		Attendance: sqlxrepos.NewAttendanceRepository(db),
	}, nil
}
