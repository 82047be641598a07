package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/LukaszKielczewski66/fightclub/core/account"
)

type accountRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Email     string `db:"email"`
	Role      string `db:"role"`
	IsActive  bool   `db:"is_active"`
	CreatedAt int64  `db:"created_at"`
	UpdatedAt int64  `db:"updated_at"`
}

func (r accountRow) toAccount() account.Account {
	return account.Account{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Role:      account.Role(r.Role),
		IsActive:  r.IsActive,
		CreatedAt: fromMillis(r.CreatedAt),
		UpdatedAt: fromMillis(r.UpdatedAt),
	}
}

const accountColumns = "id, name, email, role, is_active, created_at, updated_at"

type accountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) account.Repository {
	return &accountRepository{db: db}
}

func (repo *accountRepository) CreateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	if acc.ID == "" {
		acc.ID = uuid.New().String()
	}
	q := repo.db.Rebind(`INSERT INTO accounts (` + accountColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := repo.db.ExecContext(ctx, q,
		acc.ID, acc.Name, acc.Email, string(acc.Role), acc.IsActive, toMillis(acc.CreatedAt), toMillis(acc.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return account.Account{}, account.ErrEmailExists
		}
		return account.Account{}, errors.Wrap(err, "inserting account")
	}
	return repo.GetAccount(ctx, account.GetFilter{ID: acc.ID})
}

func (repo *accountRepository) UpdateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	q := repo.db.Rebind(`UPDATE accounts SET name = ?, role = ?, is_active = ?, updated_at = ? WHERE id = ?`)
	res, err := repo.db.ExecContext(ctx, q, acc.Name, string(acc.Role), acc.IsActive, toMillis(acc.UpdatedAt), acc.ID)
	if err != nil {
		return account.Account{}, errors.Wrap(err, "updating account")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return account.Account{}, account.ErrNotFound
	}
	return repo.GetAccount(ctx, account.GetFilter{ID: acc.ID})
}

func (repo *accountRepository) GetAccount(ctx context.Context, filter account.GetFilter) (account.Account, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.ID != "" {
		where = append(where, "id = ?")
		args = append(args, filter.ID)
	}
	if filter.Email != "" {
		where = append(where, "email = ?")
		args = append(args, filter.Email)
	}
	if len(where) == 0 {
		return account.Account{}, account.ErrNotFound
	}

	var row accountRow
	q := repo.db.Rebind(`SELECT ` + accountColumns + ` FROM accounts WHERE ` + joinAnd(where))
	if err := repo.db.GetContext(ctx, &row, q, args...); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return account.Account{}, account.ErrNotFound
		}
		return account.Account{}, errors.Wrap(err, "selecting account")
	}
	return row.toAccount(), nil
}

func (repo *accountRepository) QueryAccountsByID(ctx context.Context, ids []string) ([]account.Account, error) {
	if len(ids) == 0 {
		return []account.Account{}, nil
	}
	q, args, err := sqlx.In(`SELECT `+accountColumns+` FROM accounts WHERE id IN (?)`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "building accounts query")
	}
	var rows []accountRow
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting accounts")
	}
	accounts := make([]account.Account, len(rows))
	for i, r := range rows {
		accounts[i] = r.toAccount()
	}
	return accounts, nil
}
