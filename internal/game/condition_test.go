package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groundwork/internal/models"
)

func TestEvaluateCondition(t *testing.T) {
	small := &models.Player{ProjectScope: 3_500_000}
	large := &models.Player{ProjectScope: 4_000_001}

	cases := []struct {
		name string
		cond string
		ctx  ConditionContext
		want bool
	}{
		{"empty is always true", "", ConditionContext{}, true},
		{"always", "always", ConditionContext{}, true},
		{"always case-insensitive", " Always ", ConditionContext{}, true},
		{"dice match", "dice_roll_4", ConditionContext{Roll: 4}, true},
		{"dice mismatch", "dice_roll_4", ConditionContext{Roll: 5}, false},
		{"dice before any roll", "dice_roll_1", ConditionContext{Roll: 0}, false},
		{"scope at most, under", "scope_le_4m", ConditionContext{Player: small}, true},
		{"scope at most, over", "scope_le_4m", ConditionContext{Player: large}, false},
		{"scope above, under", "scope_gt_4m", ConditionContext{Player: small}, false},
		{"scope above, over", "scope_gt_4m", ConditionContext{Player: large}, true},
		{"scope boundary inclusive", "scope_le_4m", ConditionContext{Player: &models.Player{ProjectScope: 4_000_000}}, true},
		{"scope in thousands", "scope_gt_750k", ConditionContext{Player: small}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := EvaluateCondition(tc.cond, tc.ctx)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluateConditionErrors(t *testing.T) {
	for _, cond := range []string{"dice_roll_7", "dice_roll_x", "scope_le_abc", "sometimes", "scope_gt_4m "} {
		t.Run(cond, func(t *testing.T) {
			ok, err := EvaluateCondition(cond, ConditionContext{Player: &models.Player{}, Roll: 3})
			if cond == "scope_gt_4m " {
				// Whitespace is trimmed, not an error.
				require.NoError(t, err)
				assert.False(t, ok)
				return
			}
			assert.Error(t, err)
			assert.False(t, ok)
		})
	}
}

func TestScopeConditionRequiresPlayer(t *testing.T) {
	_, err := EvaluateCondition("scope_le_4m", ConditionContext{})
	assert.Error(t, err)
}
