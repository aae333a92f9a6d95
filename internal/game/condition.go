package game

import (
	"fmt"
	"strconv"
	"strings"

	"groundwork/internal/models"
)

// ConditionContext carries the state a condition is evaluated against.
// Roll is 0 when the player has not rolled this turn.
type ConditionContext struct {
	Player *models.Player
	Roll   int
}

// EvaluateCondition evaluates a textual effect condition against player
// state. It is a pure function with no side effects.
//
// Grammar (from the static tables):
//
//	""            always true
//	"always"      always true
//	"dice_roll_N" true when the current roll equals N (false if no roll yet)
//	"scope_le_Nm" true when project scope ≤ N million
//	"scope_gt_Nm" true when project scope > N million
//
// Unknown conditions evaluate false and return an error so a bad table row
// never silently applies an effect.
func EvaluateCondition(cond string, ctx ConditionContext) (bool, error) {
	cond = strings.ToLower(strings.TrimSpace(cond))
	switch {
	case cond == "" || cond == "always":
		return true, nil

	case strings.HasPrefix(cond, "dice_roll_"):
		n, err := strconv.Atoi(strings.TrimPrefix(cond, "dice_roll_"))
		if err != nil || n < 1 || n > 6 {
			return false, fmt.Errorf("condition %q: bad dice value", cond)
		}
		return ctx.Roll == n, nil

	case strings.HasPrefix(cond, "scope_le_"), strings.HasPrefix(cond, "scope_gt_"):
		threshold, err := parseScopeThreshold(cond[len("scope_le_"):])
		if err != nil {
			return false, fmt.Errorf("condition %q: %w", cond, err)
		}
		if ctx.Player == nil {
			return false, fmt.Errorf("condition %q: no player in context", cond)
		}
		if strings.HasPrefix(cond, "scope_le_") {
			return ctx.Player.ProjectScope <= threshold, nil
		}
		return ctx.Player.ProjectScope > threshold, nil

	default:
		return false, fmt.Errorf("unknown condition %q", cond)
	}
}

// parseScopeThreshold parses "4m" → 4_000_000, "750k" → 750_000, or a plain
// integer amount.
func parseScopeThreshold(s string) (int, error) {
	mult := 1
	switch {
	case strings.HasSuffix(s, "m"):
		mult = 1_000_000
		s = strings.TrimSuffix(s, "m")
	case strings.HasSuffix(s, "k"):
		mult = 1_000
		s = strings.TrimSuffix(s, "k")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad threshold %q", s)
	}
	return n * mult, nil
}
