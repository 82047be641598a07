package mongorepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/LukaszKielczewski66/fightclub/core/attendance"
)

type attendanceDoc struct {
	SessionID string    `bson:"sessionId"`
	UserID    string    `bson:"userId"`
	Status    string    `bson:"status"`
	MarkedBy  string    `bson:"markedBy"`
	MarkedAt  time.Time `bson:"markedAt"`
}

type attendanceRepository struct {
	coll *mongo.Collection
}

func NewAttendanceRepository(s *Store) attendance.Repository {
	return &attendanceRepository{coll: s.db.Collection(attendanceCollection)}
}

func (repo *attendanceRepository) UpsertRecords(ctx context.Context, records []attendance.Record) error {
	if len(records) == 0 {
		return nil
	}
	ops := make([]mongo.WriteModel, len(records))
	for i, r := range records {
		ops[i] = mongo.NewUpdateOneModel().
			SetFilter(bson.M{"sessionId": r.SessionID, "userId": r.MemberID}).
			SetUpdate(bson.M{"$set": bson.M{
				"status":   string(r.Status),
				"markedBy": r.MarkedBy,
				"markedAt": r.MarkedAt.UTC(),
			}}).
			SetUpsert(true)
	}
	_, err := repo.coll.BulkWrite(ctx, ops, options.BulkWrite().SetOrdered(false))
	return errors.Wrap(err, "writing attendance")
}

func (repo *attendanceRepository) QueryRecords(ctx context.Context, sessionIDs []string) ([]attendance.Record, error) {
	if len(sessionIDs) == 0 {
		return []attendance.Record{}, nil
	}
	cur, err := repo.coll.Find(ctx, bson.M{"sessionId": bson.M{"$in": sessionIDs}})
	if err != nil {
		return nil, errors.Wrap(err, "finding attendance")
	}
	var docs []attendanceDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding attendance")
	}
	records := make([]attendance.Record, len(docs))
	for i, d := range docs {
		records[i] = attendance.Record{
			SessionID: d.SessionID,
			MemberID:  d.UserID,
			Status:    attendance.Status(d.Status),
			MarkedBy:  d.MarkedBy,
			MarkedAt:  d.MarkedAt.UTC(),
		}
	}
	return records, nil
}
