// internal/planner/assemble.go
package planner

import (
	"errors"
	"sort"
	"strings"

	"mcp-meal-plan/internal/models"
	"mcp-meal-plan/internal/quantity"
)

// ErrEmptyPlan is returned when no slot ends up with a single group. It is a
// "nothing to generate" condition, not a failure.
var ErrEmptyPlan = errors.New("nothing to generate: every slot is empty")

const (
	linePrefix    = "• "
	itemSeparator = ", "
)

// Assemble scales every group of the catalog for each slot. Slots keep the
// given order; groups are visited in ascending numeric id regardless of the
// order they were loaded in. Lines with an unreadable quantity are emitted
// unchanged and reported in Plan.Issues.
func Assemble(groups []models.FoodGroup, slots []models.MealSlot) (*models.Plan, error) {
	ordered := sortedGroups(groups)

	plan := &models.Plan{}
	for _, slot := range slots {
		slotPlan := models.SlotPlan{Name: slot.Name}

		for _, group := range ordered {
			scalar, ok := slot.Scalars[group.ID]
			if !ok || scalar.Sign() <= 0 || len(group.Items) == 0 {
				continue
			}

			line, issues := renderGroup(group, scalar)
			for i := range issues {
				issues[i].Slot = slot.Name
			}
			slotPlan.Groups = append(slotPlan.Groups, line)
			plan.Issues = append(plan.Issues, issues...)
		}

		if len(slotPlan.Groups) > 0 {
			plan.Slots = append(plan.Slots, slotPlan)
		}
	}

	if len(plan.Slots) == 0 {
		return nil, ErrEmptyPlan
	}
	return plan, nil
}

func sortedGroups(groups []models.FoodGroup) []models.FoodGroup {
	ordered := make([]models.FoodGroup, len(groups))
	copy(ordered, groups)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ID < ordered[j].ID
	})
	return ordered
}

func renderGroup(group models.FoodGroup, scalar quantity.Rational) (models.GroupLine, []models.LineIssue) {
	var issues []models.LineIssue

	items := make([]models.RenderedItem, 0, len(group.Items))
	texts := make([]string, 0, len(group.Items))
	for _, line := range group.Items {
		item, err := quantity.Parse(line)
		if err != nil {
			issues = append(issues, models.LineIssue{
				GroupID: group.ID,
				Line:    line,
				Error:   err.Error(),
			})
		}

		rendered := renderItem(item, scalar)
		items = append(items, rendered)
		texts = append(texts, rendered.Text)
	}

	return models.GroupLine{
		GroupID: group.ID,
		Name:    group.Name,
		Scalar:  quantity.Canonical(scalar),
		Items:   items,
		Line:    linePrefix + group.Name + ": " + strings.Join(texts, itemSeparator),
	}, issues
}

func renderItem(item quantity.Item, scalar quantity.Rational) models.RenderedItem {
	if !item.HasQuantity {
		return models.RenderedItem{Source: item.Raw, Text: item.Raw}
	}

	scaled := quantity.ScaleItem(item, scalar)
	return models.RenderedItem{
		Source:      item.Raw,
		Text:        quantity.FormatItem(scaled),
		Quantity:    quantity.Canonical(scaled.Quantity),
		Display:     quantity.Format(scaled.Quantity),
		Description: scaled.Description,
		Scaled:      true,
	}
}
