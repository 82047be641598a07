package mongorepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/LukaszKielczewski66/fightclub/core/account"
)

type accountDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	Role      string    `bson:"role"`
	Active    bool      `bson:"active"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func (d accountDoc) toAccount() account.Account {
	return account.Account{
		ID:        d.ID,
		Name:      d.Name,
		Email:     d.Email,
		Role:      account.Role(d.Role),
		IsActive:  d.Active,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

type accountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(s *Store) account.Repository {
	return &accountRepository{coll: s.db.Collection(accountsCollection)}
}

func (repo *accountRepository) CreateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	if acc.ID == "" {
		acc.ID = uuid.New().String()
	}
	doc := accountDoc{
		ID:        acc.ID,
		Name:      acc.Name,
		Email:     acc.Email,
		Role:      string(acc.Role),
		Active:    acc.IsActive,
		CreatedAt: acc.CreatedAt.UTC(),
		UpdatedAt: acc.UpdatedAt.UTC(),
	}
	if _, err := repo.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return account.Account{}, account.ErrEmailExists
		}
		return account.Account{}, errors.Wrap(err, "inserting account")
	}
	return doc.toAccount(), nil
}

func (repo *accountRepository) UpdateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	res, err := repo.coll.UpdateByID(ctx, acc.ID, bson.M{"$set": bson.M{
		"name":      acc.Name,
		"role":      string(acc.Role),
		"active":    acc.IsActive,
		"updatedAt": acc.UpdatedAt.UTC(),
	}})
	if err != nil {
		return account.Account{}, errors.Wrap(err, "updating account")
	}
	if res.MatchedCount == 0 {
		return account.Account{}, account.ErrNotFound
	}
	return repo.GetAccount(ctx, account.GetFilter{ID: acc.ID})
}

func (repo *accountRepository) GetAccount(ctx context.Context, filter account.GetFilter) (account.Account, error) {
	q := bson.M{}
	if filter.ID != "" {
		q["_id"] = filter.ID
	}
	if filter.Email != "" {
		q["email"] = filter.Email
	}
	if len(q) == 0 {
		return account.Account{}, account.ErrNotFound
	}

	var doc accountDoc
	if err := repo.coll.FindOne(ctx, q).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return account.Account{}, account.ErrNotFound
		}
		return account.Account{}, errors.Wrap(err, "finding account")
	}
	return doc.toAccount(), nil
}

func (repo *accountRepository) QueryAccountsByID(ctx context.Context, ids []string) ([]account.Account, error) {
	if len(ids) == 0 {
		return []account.Account{}, nil
	}
	cur, err := repo.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, errors.Wrap(err, "finding accounts")
	}
	var docs []accountDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding accounts")
	}
	accounts := make([]account.Account, len(docs))
	for i, d := range docs {
		accounts[i] = d.toAccount()
	}
	return accounts, nil
}
