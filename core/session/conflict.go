package session

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/LukaszKielczewski66/fightclub/core"
)

// Conflict names the scope in which a candidate interval collides.
type Conflict int

const (
	NoConflict Conflict = iota
	TrainerConflict
	GlobalConflict
)

func (c Conflict) String() string {
	switch c {
	case TrainerConflict:
		return "trainer"
	case GlobalConflict:
		return "global"
	default:
		return "none"
	}
}

// OverlapFinder is the part of the Repository the ConflictChecker needs.
type OverlapFinder interface {
	HasOverlap(ctx context.Context, filter OverlapFilter) (bool, error)
}

// ConflictChecker decides whether an interval may be scheduled under a policy.
type ConflictChecker struct {
	finder OverlapFinder
	policy string
}

// NewConflictChecker returns a checker for policy; unknown policies fall back to the trainer policy.
func NewConflictChecker(finder OverlapFinder, policy string) *ConflictChecker {
	switch policy {
	case core.ConflictPolicyTrainer, core.ConflictPolicyGlobal, core.ConflictPolicyBoth:
	default:
		policy = core.ConflictPolicyTrainer
	}
	return &ConflictChecker{finder: finder, policy: policy}
}

func (cc *ConflictChecker) Policy() string {
	return cc.policy
}

// TrainerOverlaps reports whether trainerID already teaches during [start, end).
func (cc *ConflictChecker) TrainerOverlaps(ctx context.Context, trainerID string, start, end time.Time) (bool, error) {
	found, err := cc.finder.HasOverlap(ctx, OverlapFilter{TrainerID: trainerID, Start: start, End: end})
	return found, errors.Wrap(err, "checking trainer overlap")
}

// GlobalOverlaps reports whether any session runs during [start, end).
func (cc *ConflictChecker) GlobalOverlaps(ctx context.Context, start, end time.Time) (bool, error) {
	found, err := cc.finder.HasOverlap(ctx, OverlapFilter{Start: start, End: end})
	return found, errors.Wrap(err, "checking global overlap")
}

// Check applies the configured policy.
func (cc *ConflictChecker) Check(ctx context.Context, trainerID string, start, end time.Time) (Conflict, error) {
	if cc.policy == core.ConflictPolicyTrainer || cc.policy == core.ConflictPolicyBoth {
		found, err := cc.TrainerOverlaps(ctx, trainerID, start, end)
		if err != nil {
			return NoConflict, err
		}
		if found {
			return TrainerConflict, nil
		}
	}
	if cc.policy == core.ConflictPolicyGlobal || cc.policy == core.ConflictPolicyBoth {
		found, err := cc.GlobalOverlaps(ctx, start, end)
		if err != nil {
			return NoConflict, err
		}
		if found {
			return GlobalConflict, nil
		}
	}
	return NoConflict, nil
}
