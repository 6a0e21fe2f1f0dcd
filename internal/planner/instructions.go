// internal/planner/instructions.go
package planner

import (
	"fmt"
	"strconv"
	"strings"

	"mcp-meal-plan/internal/models"
	"mcp-meal-plan/internal/quantity"
)

// ParseInstructions reads the "group*scalar" list typed by the nutritionist,
// e.g. "1*2, 3*1.5". Blank input yields an empty map.
func ParseInstructions(text string) (map[int]quantity.Rational, error) {
	scalars := make(map[int]quantity.Rational)
	if strings.TrimSpace(text) == "" {
		return scalars, nil
	}

	for _, pair := range strings.Split(text, ",") {
		pair = strings.TrimSpace(pair)
		idText, scalarText, ok := strings.Cut(pair, "*")
		if !ok {
			return nil, fmt.Errorf("instruction %q: expected <group>*<multiplier>", pair)
		}

		id, err := strconv.Atoi(strings.TrimSpace(idText))
		if err != nil || id < 0 {
			return nil, fmt.Errorf("instruction %q: group must be a non-negative integer", pair)
		}
		if _, dup := scalars[id]; dup {
			return nil, fmt.Errorf("instruction %q: group %d given twice", pair, id)
		}

		scalar, err := quantity.ParseScalar(scalarText)
		if err != nil {
			return nil, fmt.Errorf("instruction %q: %w", pair, err)
		}
		scalars[id] = scalar
	}
	return scalars, nil
}

// ParseSlotSpec reads "Name=1*2,3*1.5" as used on the command line.
func ParseSlotSpec(text string) (models.MealSlot, error) {
	name, instructions, ok := strings.Cut(text, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return models.MealSlot{}, fmt.Errorf("slot %q: expected <name>=<instructions>", text)
	}

	scalars, err := ParseInstructions(instructions)
	if err != nil {
		return models.MealSlot{}, fmt.Errorf("slot %s: %w", name, err)
	}
	return models.MealSlot{Name: name, Scalars: scalars}, nil
}
