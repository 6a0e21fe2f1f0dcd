// internal/models/plan.go
package models

import (
	"time"

	"mcp-meal-plan/internal/quantity"
)

// FoodGroup is one numbered group of the catalog, e.g. {1, "Frutas", [...]}.
type FoodGroup struct {
	ID    int      `json:"id"`
	Name  string   `json:"nombre"`
	Items []string `json:"alimentos"`
}

// MealSlot is a named meal occasion with one multiplier per group id.
// A group missing from Scalars, or with a multiplier <= 0, is left out of
// the slot.
type MealSlot struct {
	Name    string                    `json:"name"`
	Scalars map[int]quantity.Rational `json:"scalars"`
}

type Plan struct {
	ID        string      `json:"id,omitempty"`
	Username  string      `json:"username,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	Slots     []SlotPlan  `json:"slots"`
	Issues    []LineIssue `json:"issues,omitempty"`
}

type SlotPlan struct {
	Name   string      `json:"name"`
	Groups []GroupLine `json:"groups"`
}

// GroupLine is the rendered line of one group inside a slot.
type GroupLine struct {
	GroupID int            `json:"group_id"`
	Name    string         `json:"name"`
	Scalar  string         `json:"scalar"`
	Items   []RenderedItem `json:"items"`
	Line    string         `json:"line"`
}

// RenderedItem keeps the canonical quantity next to the display text so
// downstream consumers never have to re-parse the mixed-number form.
type RenderedItem struct {
	Source      string `json:"source"`
	Text        string `json:"text"`
	Quantity    string `json:"quantity,omitempty"`
	Display     string `json:"display,omitempty"`
	Description string `json:"description,omitempty"`
	Scaled      bool   `json:"scaled"`
}

// LineIssue records a catalog line whose quantity could not be read. The
// line is still emitted verbatim.
type LineIssue struct {
	Slot    string `json:"slot"`
	GroupID int    `json:"group_id"`
	Line    string `json:"line"`
	Error   string `json:"error"`
}

// Lines returns the display lines of the slot.
func (s SlotPlan) Lines() []string {
	lines := make([]string, len(s.Groups))
	for i, g := range s.Groups {
		lines[i] = g.Line
	}
	return lines
}

type PlanSummary struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	SlotCount int       `json:"slot_count"`
	LineCount int       `json:"line_count"`
}
