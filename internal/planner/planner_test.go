package planner

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcp-meal-plan/internal/catalog"
	"mcp-meal-plan/internal/models"
	"mcp-meal-plan/internal/quantity"
)

func scalar(t *testing.T, text string) quantity.Rational {
	t.Helper()
	q, err := quantity.ParseScalar(text)
	require.NoError(t, err)
	return q
}

func TestAssemble_EndToEnd(t *testing.T) {
	groups := []models.FoodGroup{
		{ID: 1, Name: "Frutas", Items: []string{"1 taza de melón", "½ taza de fresas"}},
	}
	slots := []models.MealSlot{
		{Name: "Desayuno", Scalars: map[int]quantity.Rational{1: quantity.Int(2)}},
	}

	plan, err := Assemble(groups, slots)
	require.NoError(t, err)
	require.Len(t, plan.Slots, 1)
	assert.Equal(t, "Desayuno", plan.Slots[0].Name)
	assert.Equal(t, []string{"• Frutas: 2 taza de melón, 1 taza de fresas"}, plan.Slots[0].Lines())
	assert.Empty(t, plan.Issues)

	item := plan.Slots[0].Groups[0].Items[1]
	assert.Equal(t, "1", item.Quantity)
	assert.Equal(t, "taza de fresas", item.Description)
	assert.Equal(t, "½ taza de fresas", item.Source)
}

func TestAssemble_OrdersGroupsNumerically(t *testing.T) {
	groups := []models.FoodGroup{
		{ID: 3, Name: "Cereales", Items: []string{"1 tortilla"}},
		{ID: 10, Name: "Grasas", Items: []string{"1 cdita de aceite"}},
		{ID: 1, Name: "Frutas", Items: []string{"1 manzana"}},
		{ID: 2, Name: "Verduras", Items: []string{"1 taza de brócoli"}},
	}
	all := map[int]quantity.Rational{1: quantity.Int(1), 2: quantity.Int(1), 3: quantity.Int(1), 10: quantity.Int(1)}

	plan, err := Assemble(groups, []models.MealSlot{{Name: "Comida", Scalars: all}})
	require.NoError(t, err)

	var ids []int
	for _, g := range plan.Slots[0].Groups {
		ids = append(ids, g.GroupID)
	}
	assert.Equal(t, []int{1, 2, 3, 10}, ids)

	// Input slice is left untouched.
	assert.Equal(t, 3, groups[0].ID)
}

func TestAssemble_SuppressesZeroAndAbsent(t *testing.T) {
	groups := []models.FoodGroup{
		{ID: 1, Name: "Frutas", Items: []string{"1 manzana"}},
		{ID: 2, Name: "Verduras", Items: []string{"1 taza de brócoli"}},
		{ID: 3, Name: "Cereales", Items: []string{"1 tortilla"}},
	}
	slots := []models.MealSlot{
		{Name: "Desayuno", Scalars: map[int]quantity.Rational{1: quantity.Int(0), 2: scalar(t, "-1"), 3: scalar(t, "1.5")}},
		{Name: "Comida", Scalars: map[int]quantity.Rational{}},
		{Name: "Cena", Scalars: map[int]quantity.Rational{2: scalar(t, "0.5")}},
	}

	plan, err := Assemble(groups, slots)
	require.NoError(t, err)
	require.Len(t, plan.Slots, 2)

	assert.Equal(t, "Desayuno", plan.Slots[0].Name)
	assert.Equal(t, []string{"• Cereales: 1 ½ tortilla"}, plan.Slots[0].Lines())
	assert.Equal(t, "Cena", plan.Slots[1].Name)
	assert.Equal(t, []string{"• Verduras: ½ taza de brócoli"}, plan.Slots[1].Lines())
}

func TestAssemble_PassThroughAndMalformed(t *testing.T) {
	groups := []models.FoodGroup{
		{ID: 4, Name: "Grasas", Items: []string{"al gusto", "3/0 cdita de aceite", "⅓ de aguacate"}},
	}
	slots := []models.MealSlot{{Name: "Cena", Scalars: map[int]quantity.Rational{4: quantity.Int(3)}}}

	plan, err := Assemble(groups, slots)
	require.NoError(t, err)
	assert.Equal(t, []string{"• Grasas: al gusto, 3/0 cdita de aceite, 1 de aguacate"}, plan.Slots[0].Lines())

	require.Len(t, plan.Issues, 1)
	issue := plan.Issues[0]
	assert.Equal(t, "Cena", issue.Slot)
	assert.Equal(t, 4, issue.GroupID)
	assert.Equal(t, "3/0 cdita de aceite", issue.Line)
	assert.Contains(t, issue.Error, "malformed quantity")

	items := plan.Slots[0].Groups[0].Items
	assert.False(t, items[0].Scaled)
	assert.Equal(t, "al gusto", items[0].Text)
}

func TestAssemble_ScalesQuantityOnlyLine(t *testing.T) {
	groups, err := catalog.Decode(strings.NewReader(`{"1": {"nombre": "Huevos", "alimentos": ["2 ", "1 pieza"]}}`))
	require.NoError(t, err)
	slots := []models.MealSlot{{Name: "Desayuno", Scalars: map[int]quantity.Rational{1: quantity.Int(3)}}}

	plan, err := Assemble(groups, slots)
	require.NoError(t, err)
	assert.Equal(t, []string{"• Huevos: 6, 3 pieza"}, plan.Slots[0].Lines())
	assert.Empty(t, plan.Issues)
}

func TestAssemble_SkipsGroupsWithoutItems(t *testing.T) {
	groups := []models.FoodGroup{
		{ID: 1, Name: "Vacio", Items: nil},
		{ID: 2, Name: "Frutas", Items: []string{"1 manzana"}},
	}
	slots := []models.MealSlot{
		{Name: "Desayuno", Scalars: map[int]quantity.Rational{1: quantity.Int(2), 2: quantity.Int(1)}},
		{Name: "Cena", Scalars: map[int]quantity.Rational{1: quantity.Int(2)}},
	}

	plan, err := Assemble(groups, slots)
	require.NoError(t, err)
	require.Len(t, plan.Slots, 1)
	assert.Equal(t, []string{"• Frutas: 1 manzana"}, plan.Slots[0].Lines())

	_, err = Assemble(groups[:1], slots[1:])
	assert.ErrorIs(t, err, ErrEmptyPlan)
}

func TestAssemble_Empty(t *testing.T) {
	groups := []models.FoodGroup{{ID: 1, Name: "Frutas", Items: []string{"1 manzana"}}}

	_, err := Assemble(groups, []models.MealSlot{{Name: "Desayuno"}, {Name: "Cena", Scalars: map[int]quantity.Rational{9: quantity.Int(1)}}})
	assert.True(t, errors.Is(err, ErrEmptyPlan))

	_, err = Assemble(nil, nil)
	assert.ErrorIs(t, err, ErrEmptyPlan)
}

func TestAssemble_DecimalScalarStaysExact(t *testing.T) {
	groups := []models.FoodGroup{{ID: 1, Name: "Lácteos", Items: []string{"1 taza de leche"}}}
	slots := []models.MealSlot{{Name: "Colación", Scalars: map[int]quantity.Rational{1: scalar(t, "0.1")}}}

	plan, err := Assemble(groups, slots)
	require.NoError(t, err)
	assert.Equal(t, "• Lácteos: 1/10 taza de leche", plan.Slots[0].Groups[0].Line)

	// The canonical quantity re-parses and scales back to one exactly.
	item := plan.Slots[0].Groups[0].Items[0]
	reparsed, err := quantity.Parse(item.Quantity + " " + item.Description)
	require.NoError(t, err)
	assert.Equal(t, "1", quantity.Format(quantity.Scale(reparsed.Quantity, quantity.Int(10))))
}

func TestParseInstructions(t *testing.T) {
	got, err := ParseInstructions("1*2, 3*1.5 ,4*0")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "2", got[1].String())
	assert.Equal(t, "3/2", got[3].String())
	assert.Equal(t, 0, got[4].Sign())

	empty, err := ParseInstructions("   ")
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, bad := range []string{"1-2", "a*2", "1*dos", "1*2,1*3", "-1*2", "1*2,"} {
		_, err := ParseInstructions(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseSlotSpec(t *testing.T) {
	slot, err := ParseSlotSpec("Desayuno=1*2,2*0.5")
	require.NoError(t, err)
	assert.Equal(t, "Desayuno", slot.Name)
	assert.Equal(t, "1/2", slot.Scalars[2].String())

	empty, err := ParseSlotSpec("Cena=")
	require.NoError(t, err)
	assert.Empty(t, empty.Scalars)

	_, err = ParseSlotSpec("=1*2")
	assert.Error(t, err)
	_, err = ParseSlotSpec("Comida")
	assert.Error(t, err)
}
