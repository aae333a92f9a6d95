package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groundwork/internal/data"
	"groundwork/internal/models"
)

func makeRec(effectType, action, value, cond string) data.EffectRecord {
	return data.EffectRecord{
		SpaceName:    "TEST",
		VisitType:    models.VisitFirst,
		EffectType:   effectType,
		EffectAction: action,
		EffectValue:  value,
		Condition:    cond,
		TriggerType:  data.TriggerAuto,
	}
}

func TestBuildEffectsResourceChanges(t *testing.T) {
	ctx := TriggerContext{Player: &models.Player{}, Source: "test"}

	effects, err := BuildEffects([]data.EffectRecord{
		makeRec("money", "add", "$2,500", ""),
		makeRec("money", "fee", "300", ""),
		makeRec("money", "fee", "5%", ""),
		makeRec("time", "add", "3", ""),
		makeRec("time", "subtract", "1", ""),
	}, ctx)
	require.NoError(t, err)
	require.Len(t, effects, 5)

	assert.Equal(t, EffectResourceChange, effects[0].Kind)
	assert.Equal(t, ResourceMoney, effects[0].Resource)
	assert.Equal(t, 2500, effects[0].Amount)

	assert.Equal(t, -300, effects[1].Amount, "fees debit")
	assert.Equal(t, -5, effects[2].Percent, "percent fees carry the percentage, not an amount")
	assert.Zero(t, effects[2].Amount)

	assert.Equal(t, ResourceTime, effects[3].Resource)
	assert.Equal(t, 3, effects[3].Amount)
	assert.Equal(t, -1, effects[4].Amount)
}

func TestBuildEffectsCardActions(t *testing.T) {
	ctx := TriggerContext{Player: &models.Player{}, Source: "test"}

	effects, err := BuildEffects([]data.EffectRecord{
		makeRec("cards", "draw_w", "3", ""),
		makeRec("cards", "discard_e", "1", ""),
		makeRec("cards", "draw_b", "NaN", ""),
	}, ctx)
	require.NoError(t, err)
	require.Len(t, effects, 3)

	assert.Equal(t, EffectCardDraw, effects[0].Kind)
	assert.Equal(t, "W", effects[0].CardType)
	assert.Equal(t, 3, effects[0].Count)
	assert.True(t, effects[0].CountDeclared)

	assert.Equal(t, EffectCardDiscard, effects[1].Kind)
	assert.Equal(t, "E", effects[1].CardType)

	// An unparseable count is not fatal; the draw falls back to the card
	// service default and feedback reports the confirmed count.
	assert.Equal(t, EffectCardDraw, effects[2].Kind)
	assert.False(t, effects[2].CountDeclared)
}

func TestBuildEffectsFiltersByCondition(t *testing.T) {
	ctx := TriggerContext{Player: &models.Player{}, Roll: 3, Source: "test"}

	effects, err := BuildEffects([]data.EffectRecord{
		makeRec("money", "add", "100", "dice_roll_3"),
		makeRec("money", "add", "999", "dice_roll_5"),
	}, ctx)
	require.NoError(t, err)
	require.Len(t, effects, 1)
	assert.Equal(t, 100, effects[0].Amount)
}

func TestBuildEffectsRejectsBadRows(t *testing.T) {
	ctx := TriggerContext{Player: &models.Player{}, Source: "test"}

	_, err := BuildEffects([]data.EffectRecord{makeRec("mystery", "add", "1", "")}, ctx)
	assert.Error(t, err, "unknown effect type")

	_, err = BuildEffects([]data.EffectRecord{makeRec("money", "add", "lots", "")}, ctx)
	assert.Error(t, err, "unparseable money value")

	_, err = BuildEffects([]data.EffectRecord{makeRec("cards", "burn_w", "1", "")}, ctx)
	assert.Error(t, err, "unknown card action")

	_, err = BuildEffects([]data.EffectRecord{makeRec("money", "add", "1", "whenever")}, ctx)
	assert.Error(t, err, "malformed condition")
}
