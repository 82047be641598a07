package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LukaszKielczewski66/fightclub/core"
)

// finderFunc adapts a function to an OverlapFinder.
type finderFunc func(filter OverlapFilter) bool

func (f finderFunc) HasOverlap(_ context.Context, filter OverlapFilter) (bool, error) {
	return f(filter), nil
}

func TestConflictChecker_Check(t *testing.T) {
	existing := []Session{
		{TrainerID: "t1", StartAt: at(10), EndAt: at(11)},
	}
	finder := finderFunc(func(f OverlapFilter) bool {
		for _, s := range existing {
			if f.TrainerID != "" && s.TrainerID != f.TrainerID {
				continue
			}
			if core.Overlaps(s.StartAt, s.EndAt, f.Start, f.End) {
				return true
			}
		}
		return false
	})

	tests := []struct {
		name      string
		policy    string
		trainerID string
		start     time.Time
		end       time.Time
		want      Conflict
	}{
		{name: "trainer: same trainer overlap", policy: core.ConflictPolicyTrainer, trainerID: "t1", start: at(10.5), end: at(11.5), want: TrainerConflict},
		{name: "trainer: touching boundary", policy: core.ConflictPolicyTrainer, trainerID: "t1", start: at(11), end: at(12), want: NoConflict},
		{name: "trainer: other trainer", policy: core.ConflictPolicyTrainer, trainerID: "t2", start: at(10), end: at(11), want: NoConflict},
		{name: "global: other trainer", policy: core.ConflictPolicyGlobal, trainerID: "t2", start: at(10), end: at(11), want: GlobalConflict},
		{name: "global: touching boundary", policy: core.ConflictPolicyGlobal, trainerID: "t2", start: at(9), end: at(10), want: NoConflict},
		{name: "both: same trainer", policy: core.ConflictPolicyBoth, trainerID: "t1", start: at(10), end: at(11), want: TrainerConflict},
		{name: "both: other trainer", policy: core.ConflictPolicyBoth, trainerID: "t2", start: at(10.5), end: at(12), want: GlobalConflict},
		{name: "unknown policy is trainer", policy: "room", trainerID: "t2", start: at(10), end: at(11), want: NoConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cc := NewConflictChecker(finder, tt.policy)
			got, err := cc.Check(context.Background(), tt.trainerID, tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func at(hour float64) time.Time {
	base := time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC)
	return base.Add(time.Duration(hour * float64(time.Hour)))
}
