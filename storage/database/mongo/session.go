package mongorepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/LukaszKielczewski66/fightclub/core/session"
)

type sessionDoc struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Type         string    `bson:"type"`
	Level        string    `bson:"level"`
	TrainerID    string    `bson:"trainerId"`
	TrainerName  string    `bson:"trainerName"`
	Capacity     int       `bson:"capacity"`
	StartAt      time.Time `bson:"startAt"`
	EndAt        time.Time `bson:"endAt"`
	Participants []string  `bson:"participants"`
	CreatedAt    time.Time `bson:"createdAt"`
}

func (d sessionDoc) toSession() session.Session {
	participants := d.Participants
	if participants == nil {
		participants = []string{}
	}
	return session.Session{
		ID:           d.ID,
		Name:         d.Name,
		Category:     session.Category(d.Type),
		Level:        session.Level(d.Level),
		TrainerID:    d.TrainerID,
		TrainerName:  d.TrainerName,
		Capacity:     d.Capacity,
		StartAt:      d.StartAt.UTC(),
		EndAt:        d.EndAt.UTC(),
		Participants: participants,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

type sessionRepository struct {
	coll *mongo.Collection
}

func NewSessionRepository(s *Store) session.Repository {
	return &sessionRepository{coll: s.db.Collection(sessionsCollection)}
}

func (repo *sessionRepository) CreateSession(ctx context.Context, s session.Session) (session.Session, error) {
	doc := sessionDoc{
		ID:           uuid.New().String(),
		Name:         s.Name,
		Type:         string(s.Category),
		Level:        string(s.Level),
		TrainerID:    s.TrainerID,
		TrainerName:  s.TrainerName,
		Capacity:     s.Capacity,
		StartAt:      s.StartAt.UTC(),
		EndAt:        s.EndAt.UTC(),
		Participants: []string{},
		CreatedAt:    s.CreatedAt.UTC(),
	}
	if _, err := repo.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return session.Session{}, session.ErrDuplicate
		}
		return session.Session{}, errors.Wrap(err, "inserting session")
	}
	return doc.toSession(), nil
}

func (repo *sessionRepository) GetSession(ctx context.Context, id string) (session.Session, error) {
	var doc sessionDoc
	if err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return session.Session{}, session.ErrNotFound
		}
		return session.Session{}, errors.Wrap(err, "finding session")
	}
	return doc.toSession(), nil
}

func queryFilter(f session.QueryFilter) bson.M {
	q := bson.M{}
	if f.TrainerID != "" {
		q["trainerId"] = f.TrainerID
	}
	if f.MemberID != "" {
		q["participants"] = f.MemberID
	}

	startAt := bson.M{}
	if !f.StartFrom.IsZero() {
		startAt["$gte"] = f.StartFrom.UTC()
	}
	if !f.StartTo.IsZero() {
		startAt["$lt"] = f.StartTo.UTC()
	}
	endAt := bson.M{}
	if !f.ActiveAt.IsZero() {
		startAt["$lte"] = f.ActiveAt.UTC()
		endAt["$gt"] = f.ActiveAt.UTC()
	}
	if !f.EndedBy.IsZero() {
		endAt["$lte"] = f.EndedBy.UTC()
	}
	if len(startAt) > 0 {
		q["startAt"] = startAt
	}
	if len(endAt) > 0 {
		q["endAt"] = endAt
	}
	return q
}

func (repo *sessionRepository) QuerySessions(ctx context.Context, filter session.QueryFilter) ([]session.Session, error) {
	order := 1
	if filter.Latest {
		order = -1
	}
	opts := options.Find().SetSort(bson.D{{Key: "startAt", Value: order}, {Key: "_id", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cur, err := repo.coll.Find(ctx, queryFilter(filter), opts)
	if err != nil {
		return nil, errors.Wrap(err, "finding sessions")
	}
	var docs []sessionDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding sessions")
	}
	sessions := make([]session.Session, len(docs))
	for i, d := range docs {
		sessions[i] = d.toSession()
	}
	return sessions, nil
}

func (repo *sessionRepository) HasOverlap(ctx context.Context, filter session.OverlapFilter) (bool, error) {
	q := bson.M{
		"startAt": bson.M{"$lt": filter.End.UTC()},
		"endAt":   bson.M{"$gt": filter.Start.UTC()},
	}
	if filter.TrainerID != "" {
		q["trainerId"] = filter.TrainerID
	}
	err := repo.coll.FindOne(ctx, q, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	switch {
	case err == nil:
		return true, nil
	case err == mongo.ErrNoDocuments:
		return false, nil
	default:
		return false, errors.Wrap(err, "finding overlapping session")
	}
}

// mutate applies update to the session matching filter as a single FindOneAndUpdate.
func (repo *sessionRepository) mutate(ctx context.Context, filter, update bson.M) (session.Session, error) {
	var doc sessionDoc
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := repo.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return session.Session{}, session.ErrConditionFailed
		}
		return session.Session{}, errors.Wrap(err, "updating participants")
	}
	return doc.toSession(), nil
}

func (repo *sessionRepository) AddParticipant(ctx context.Context, sessionID, memberID string) (session.Session, error) {
	return repo.mutate(ctx,
		bson.M{
			"_id":          sessionID,
			"participants": bson.M{"$ne": memberID},
			"$expr":        bson.M{"$lt": bson.A{bson.M{"$size": "$participants"}, "$capacity"}},
		},
		bson.M{"$addToSet": bson.M{"participants": memberID}},
	)
}

func (repo *sessionRepository) RemoveParticipant(ctx context.Context, sessionID, memberID string) (session.Session, error) {
	return repo.mutate(ctx,
		bson.M{"_id": sessionID, "participants": memberID},
		bson.M{"$pull": bson.M{"participants": memberID}},
	)
}
