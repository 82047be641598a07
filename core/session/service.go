package session

import (
	"context"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/LukaszKielczewski66/fightclub/core"
	"github.com/LukaszKielczewski66/fightclub/core/account"
)

var (
	// errors
	ErrNotFound        = core.NewNotFoundError("session not found")
	ErrTrainerNotFound = core.NewNotFoundError("trainer not found")
	ErrAlreadyBooked   = core.NewConflictError("already booked")
	ErrNoSeats         = core.NewConflictError("no seats left")
	ErrNotBooked       = core.NewConflictError("not booked")
	ErrBookingChanged  = core.NewConflictError("session changed, try again")
	ErrTrainerOverlap  = core.NewConflictError("the trainer already has a session at this time")
	ErrVenueOverlap    = core.NewConflictError("another session is already scheduled at this time")
	ErrDuplicate       = core.NewConflictError("this session already exists")
	ErrCannotSchedule  = core.NewPermissionError("not allowed to schedule sessions")
	ErrForeignTrainer  = core.NewPermissionError("cannot schedule sessions for another trainer")

	// ErrConditionFailed is returned by a Repository when a conditional participant mutation matched nothing.
	ErrConditionFailed = errors.New("session condition not met")

	errRangeRequired = core.NewValidationError(nil,
		core.FieldError{Field: "from", Error: "from and to are required"},
		core.FieldError{Field: "to", Error: "from and to are required"},
	)

	// custom validation tags & texts
	categoryTag  = "category"
	categoryText = "{0} must be one of BJJ, MMA, Cross"
	levelTag     = "level"
	levelText    = "{0} must be one of beginner, intermediate, advanced"
)

var NowFunc = time.Now // mockable

type (
	Repository interface {
		OverlapFinder
		// CreateSession returns ErrDuplicate when a session with the same trainer, start and name exists.
		CreateSession(ctx context.Context, s Session) (Session, error)
		// GetSession returns ErrNotFound when no session matches.
		GetSession(ctx context.Context, id string) (Session, error)
		QuerySessions(ctx context.Context, filter QueryFilter) ([]Session, error)
		// AddParticipant adds memberID in one atomic step, only if it is not yet a participant and a seat is free.
		// It returns ErrConditionFailed when nothing matched.
		AddParticipant(ctx context.Context, sessionID, memberID string) (Session, error)
		// RemoveParticipant removes memberID in one atomic step, only if it is a participant.
		// It returns ErrConditionFailed when nothing matched.
		RemoveParticipant(ctx context.Context, sessionID, memberID string) (Session, error)
	}

	Service struct {
		repo      Repository
		accounts  account.Directory
		conflicts *ConflictChecker
		validate  *validator.Validate
		loc       *time.Location
		log       core.Logger
	}
)

// InitValidators registers the category and level validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(categoryTag, func(fl validator.FieldLevel) bool {
		c, ok := fl.Field().Interface().(Category)
		return ok && c.IsValid()
	})
	core.RegisterCustomTranslation(validate, translator, categoryTag, categoryText)

	_ = validate.RegisterValidation(levelTag, func(fl validator.FieldLevel) bool {
		l, ok := fl.Field().Interface().(Level)
		return ok && l.IsValid()
	})
	core.RegisterCustomTranslation(validate, translator, levelTag, levelText)
}

func NewService(
	repo Repository,
	accounts account.Directory,
	conflicts *ConflictChecker,
	validate *validator.Validate,
	loc *time.Location,
	logger core.Logger,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:      repo,
		accounts:  accounts,
		conflicts: conflicts,
		validate:  validate,
		loc:       loc,
		log:       logger,
	}
}

// Create validates and schedules a new session taught by the caller or, for admins, by ns.TrainerID.
// The overlap check and the insert are separate store round trips: two concurrent creations may both pass
// the check. The unique (trainer, start, name) index is the only hard backstop.
func (svc *Service) Create(ctx context.Context, ns NewSession, caller account.Identity) (View, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return View{}, err
	}

	trainerID, err := resolveTrainer(caller, ns.TrainerID)
	if err != nil {
		return View{}, err
	}
	trainer, err := svc.accounts.Get(ctx, trainerID)
	if err != nil {
		if core.IsNotFound(err) {
			return View{}, ErrTrainerNotFound
		}
		return View{}, errors.Wrap(err, "getting trainer")
	}
	if !trainer.IsActive {
		return View{}, core.NewValidationError(nil, core.FieldError{Field: "trainerId", Error: "trainer account is inactive"})
	}
	if !trainer.CanTeach() {
		return View{}, core.NewValidationError(nil, core.FieldError{Field: "trainerId", Error: "account is not a trainer"})
	}

	start, end, err := ns.Interval(NowFunc(), svc.loc)
	if err != nil {
		return View{}, err
	}

	conflict, err := svc.conflicts.Check(ctx, trainer.ID, start, end)
	if err != nil {
		return View{}, err
	}
	switch conflict {
	case TrainerConflict:
		return View{}, ErrTrainerOverlap
	case GlobalConflict:
		return View{}, ErrVenueOverlap
	}

	sess, err := svc.repo.CreateSession(ctx, Session{
		Name:        ns.Name,
		Category:    ns.Category,
		Level:       ns.Level,
		TrainerID:   trainer.ID,
		TrainerName: trainer.Name,
		Capacity:    ns.Capacity,
		StartAt:     start,
		EndAt:       end,
		CreatedAt:   NowFunc().UTC(),
	})
	if err != nil {
		if errors.Cause(err) == ErrDuplicate {
			return View{}, ErrDuplicate
		}
		return View{}, errors.Wrap(err, "creating session")
	}

	svc.log.Info("session scheduled", map[string]interface{}{
		"session": sess.ID,
		"trainer": sess.TrainerID,
		"startAt": sess.StartAt,
	}, caller)
	return sess.View(), nil
}

func resolveTrainer(caller account.Identity, requested string) (string, error) {
	if !caller.CanSchedule() {
		return "", ErrCannotSchedule
	}
	if !caller.CanAssignTrainer(requested) {
		return "", ErrForeignTrainer
	}
	if requested == "" {
		return caller.ID, nil
	}
	return requested, nil
}

// Get returns a single session.
func (svc *Service) Get(ctx context.Context, id string) (Session, error) {
	if id == "" {
		return Session{}, ErrNotFound
	}
	return svc.repo.GetSession(ctx, id)
}

// List returns every session starting within [rng.From, rng.To), both bounds required.
func (svc *Service) List(ctx context.Context, rng core.TimeRange) ([]View, error) {
	if !rng.IsSet() {
		return nil, errRangeRequired
	}
	sessions, err := svc.repo.QuerySessions(ctx, QueryFilter{StartFrom: rng.From, StartTo: rng.To})
	if err != nil {
		return nil, errors.Wrap(err, "querying sessions")
	}
	return Views(sessions), nil
}

// ListByTrainer returns the trainer's sessions in rng, or the upcoming ones when rng is not fully set.
func (svc *Service) ListByTrainer(ctx context.Context, trainerID string, rng core.TimeRange) ([]View, error) {
	filter := svc.rangeFilter(rng)
	filter.TrainerID = trainerID
	sessions, err := svc.repo.QuerySessions(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying trainer sessions")
	}
	return Views(sessions), nil
}

// ListBookings returns the sessions memberID is enrolled in, with the same range rules as ListByTrainer.
func (svc *Service) ListBookings(ctx context.Context, memberID string, rng core.TimeRange) ([]View, error) {
	filter := svc.rangeFilter(rng)
	filter.MemberID = memberID
	sessions, err := svc.repo.QuerySessions(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying bookings")
	}
	return Views(sessions), nil
}

func (svc *Service) rangeFilter(rng core.TimeRange) QueryFilter {
	if rng.IsSet() {
		return QueryFilter{StartFrom: rng.From, StartTo: rng.To}
	}
	return QueryFilter{StartFrom: NowFunc().UTC()}
}

// Enroll adds memberID to the session if a seat is free and the member is not enrolled yet.
func (svc *Service) Enroll(ctx context.Context, sessionID, memberID string) (View, error) {
	if sessionID == "" {
		return View{}, ErrNotFound
	}
	sess, err := svc.repo.AddParticipant(ctx, sessionID, memberID)
	if err != nil {
		if errors.Cause(err) != ErrConditionFailed {
			return View{}, errors.Wrap(err, "adding participant")
		}
		return View{}, svc.diagnoseEnroll(ctx, sessionID, memberID)
	}

	svc.log.Debug("member enrolled", map[string]interface{}{
		"session":  sess.ID,
		"member":   memberID,
		"reserved": sess.Reserved(),
	})
	return sess.View(), nil
}

// diagnoseEnroll explains a rejected enrollment. The rejection itself has already happened.
func (svc *Service) diagnoseEnroll(ctx context.Context, sessionID, memberID string) error {
	sess, err := svc.repo.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return ErrNotFound
		}
		return errors.Wrap(err, "getting session")
	}
	switch {
	case sess.HasParticipant(memberID):
		return ErrAlreadyBooked
	case sess.IsFull():
		return ErrNoSeats
	default:
		return ErrBookingChanged
	}
}

// Unenroll removes memberID from the session.
func (svc *Service) Unenroll(ctx context.Context, sessionID, memberID string) (View, error) {
	if sessionID == "" {
		return View{}, ErrNotFound
	}
	sess, err := svc.repo.RemoveParticipant(ctx, sessionID, memberID)
	if err != nil {
		if errors.Cause(err) != ErrConditionFailed {
			return View{}, errors.Wrap(err, "removing participant")
		}
		return View{}, svc.diagnoseUnenroll(ctx, sessionID)
	}

	svc.log.Debug("member unenrolled", map[string]interface{}{
		"session":  sess.ID,
		"member":   memberID,
		"reserved": sess.Reserved(),
	})
	return sess.View(), nil
}

func (svc *Service) diagnoseUnenroll(ctx context.Context, sessionID string) error {
	if _, err := svc.repo.GetSession(ctx, sessionID); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return ErrNotFound
		}
		return errors.Wrap(err, "getting session")
	}
	return ErrNotBooked
}
