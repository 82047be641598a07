package account

import (
	"context"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/LukaszKielczewski66/fightclub/core"
)

var (
	// errors
	ErrNotFound    = core.NewNotFoundError("account not found")
	ErrEmailExists = errors.New("an account with this email already exists")

	roleTag  = "role"
	roleText = "invalid role"
)

// InitValidators registers the account validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(roleTag, func(fl validator.FieldLevel) bool {
		r, ok := fl.Field().Interface().(Role)
		return ok && r.IsValid()
	})
	core.RegisterCustomTranslation(validate, translator, roleTag, roleText)
}

type (
	Repository interface {
		CreateAccount(ctx context.Context, acc Account) (Account, error)
		UpdateAccount(ctx context.Context, acc Account) (Account, error)
		// GetAccount returns ErrNotFound when no account matches.
		GetAccount(ctx context.Context, filter GetFilter) (Account, error)
		// QueryAccountsByID ignores unknown ids.
		QueryAccountsByID(ctx context.Context, ids []string) ([]Account, error)
	}

	// Directory is the read side of accounts consumed by the scheduling core.
	Directory interface {
		Get(ctx context.Context, id string) (Account, error)
		Names(ctx context.Context, ids []string) (map[string]string, error)
	}

	Service struct {
		repo Repository
	}
)

var _ Directory = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Save updates the account with the same email or creates it.
func (svc *Service) Save(ctx context.Context, na NewAccount) (Account, error) {
	now := time.Now().UTC()
	acc, err := svc.repo.GetAccount(ctx, GetFilter{Email: na.Email})
	switch {
	case err == nil:
		acc.Name = na.Name
		acc.Role = na.Role
		acc.IsActive = !na.Inactive
		acc.UpdatedAt = now
		acc, err = svc.repo.UpdateAccount(ctx, acc)
		return acc, errors.Wrap(err, "updating account")
	case errors.Cause(err) == ErrNotFound:
		acc = Account{
			Name:      na.Name,
			Email:     na.Email,
			Role:      na.Role,
			IsActive:  !na.Inactive,
			CreatedAt: now,
			UpdatedAt: now,
		}
		acc, err = svc.repo.CreateAccount(ctx, acc)
		return acc, errors.Wrap(err, "creating account")
	default:
		return Account{}, errors.Wrap(err, "finding account by email")
	}
}

func (svc *Service) Get(ctx context.Context, id string) (Account, error) {
	if id == "" {
		return Account{}, ErrNotFound
	}
	return svc.repo.GetAccount(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Account, error) {
	email = core.CleanString(email, true /* lower */)
	if email == "" {
		return Account{}, ErrNotFound
	}
	return svc.repo.GetAccount(ctx, GetFilter{Email: email})
}

// Names resolves display names for the given account ids.
func (svc *Service) Names(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	accounts, err := svc.repo.QueryAccountsByID(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "querying accounts")
	}
	for _, acc := range accounts {
		names[acc.ID] = acc.Name
	}
	return names, nil
}
