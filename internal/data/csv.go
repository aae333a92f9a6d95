package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"groundwork/internal/models"
)

// Table file names inside the data directory.
const (
	fileSpaceEffects = "SPACE_EFFECTS.csv"
	fileDiceOutcomes = "DICE_OUTCOMES.csv"
	fileMovement     = "MOVEMENT.csv"
	fileGameConfig   = "GAME_CONFIG.csv"
	fileCards        = "CARDS.csv"
)

// LoadDir reads all five table files from dir and returns an indexed
// provider. Any malformed row fails the whole load; the game must never
// start on partial tables.
func LoadDir(dir string) (*StaticProvider, error) {
	effects, err := loadCSV(dir, fileSpaceEffects, parseEffectRow)
	if err != nil {
		return nil, err
	}
	dice, err := loadCSV(dir, fileDiceOutcomes, parseDiceRow)
	if err != nil {
		return nil, err
	}
	movement, err := loadCSV(dir, fileMovement, parseMovementRow)
	if err != nil {
		return nil, err
	}
	configs, err := loadCSV(dir, fileGameConfig, parseConfigRow)
	if err != nil {
		return nil, err
	}
	cards, err := loadCSV(dir, fileCards, parseCardRow)
	if err != nil {
		return nil, err
	}
	return NewStaticProvider(effects, dice, movement, configs, cards)
}

func loadCSV[T any](dir, name string, parse func(header map[string]int, row []string) (T, error)) ([]T, error) {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("data: open %s: %w", name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // trailing columns vary across table revisions
	headerRow, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("data: read %s header: %w", name, err)
	}
	header := make(map[string]int, len(headerRow))
	for i, h := range headerRow {
		header[strings.TrimSpace(strings.ToLower(h))] = i
	}

	var out []T
	line := 1
	for {
		row, err := r.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("data: read %s line %d: %w", name, line, err)
		}
		v, err := parse(header, row)
		if err != nil {
			return nil, fmt.Errorf("data: %s line %d: %w", name, line, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func field(header map[string]int, row []string, name string) string {
	i, ok := header[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func intField(header map[string]int, row []string, name string) (int, error) {
	s := field(header, row, name)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", name, err)
	}
	return n, nil
}

func boolField(header map[string]int, row []string, name string) bool {
	switch strings.ToLower(field(header, row, name)) {
	case "yes", "true", "1":
		return true
	}
	return false
}

func visitField(header map[string]int, row []string) (models.VisitType, error) {
	switch field(header, row, "visit_type") {
	case "First", "first", "":
		return models.VisitFirst, nil
	case "Subsequent", "subsequent":
		return models.VisitSubsequent, nil
	default:
		return "", fmt.Errorf("unknown visit_type %q", field(header, row, "visit_type"))
	}
}

func parseEffectRow(header map[string]int, row []string) (EffectRecord, error) {
	visit, err := visitField(header, row)
	if err != nil {
		return EffectRecord{}, err
	}
	trigger := field(header, row, "trigger_type")
	if trigger == "" {
		trigger = TriggerAuto
	}
	return EffectRecord{
		SpaceName:    field(header, row, "space_name"),
		VisitType:    visit,
		EffectType:   field(header, row, "effect_type"),
		EffectAction: field(header, row, "effect_action"),
		EffectValue:  field(header, row, "effect_value"),
		Condition:    field(header, row, "condition"),
		TriggerType:  trigger,
		Description:  field(header, row, "description"),
	}, nil
}

func parseDiceRow(header map[string]int, row []string) (DiceOutcome, error) {
	visit, err := visitField(header, row)
	if err != nil {
		return DiceOutcome{}, err
	}
	d := DiceOutcome{
		SpaceName:   field(header, row, "space_name"),
		VisitType:   visit,
		OutcomeType: field(header, row, "outcome_type"),
	}
	for i := 0; i < 6; i++ {
		d.Rolls[i] = field(header, row, "roll_"+strconv.Itoa(i+1))
	}
	return d, nil
}

func parseMovementRow(header map[string]int, row []string) (MovementSpec, error) {
	visit, err := visitField(header, row)
	if err != nil {
		return MovementSpec{}, err
	}
	m := MovementSpec{
		SpaceName:    field(header, row, "space_name"),
		VisitType:    visit,
		MovementType: MovementType(field(header, row, "movement_type")),
	}
	switch m.MovementType {
	case MovementNone, MovementFixed, MovementChoice, MovementDice:
	default:
		return MovementSpec{}, fmt.Errorf("unknown movement_type %q", m.MovementType)
	}
	for i := 1; i <= 5; i++ {
		if d := field(header, row, "destination_"+strconv.Itoa(i)); d != "" {
			m.Destinations = append(m.Destinations, d)
		}
	}
	return m, nil
}

func parseConfigRow(header map[string]int, row []string) (SpaceConfig, error) {
	required, err := intField(header, row, "required_actions")
	if err != nil {
		return SpaceConfig{}, err
	}
	return SpaceConfig{
		SpaceName:       field(header, row, "space_name"),
		Phase:           field(header, row, "phase"),
		IsStartingSpace: boolField(header, row, "is_starting_space"),
		IsEndingSpace:   boolField(header, row, "is_ending_space"),
		CanNegotiate:    boolField(header, row, "can_negotiate"),
		RequiredActions: required,
	}, nil
}

func parseCardRow(header map[string]int, row []string) (Card, error) {
	cost, err := intField(header, row, "cost")
	if err != nil {
		return Card{}, err
	}
	duration, err := intField(header, row, "duration")
	if err != nil {
		return Card{}, err
	}
	perTurn, err := intField(header, row, "time_per_turn")
	if err != nil {
		return Card{}, err
	}
	scope, err := intField(header, row, "work_scope")
	if err != nil {
		return Card{}, err
	}
	c := Card{
		ID:          field(header, row, "card_id"),
		Type:        field(header, row, "card_type"),
		Name:        field(header, row, "card_name"),
		Description: field(header, row, "description"),
		Cost:        cost,
		Duration:    duration,
		PerTurnTime: perTurn,
		WorkScope:   scope,
	}
	if c.ID == "" {
		return Card{}, fmt.Errorf("missing card_id")
	}
	return c, nil
}
