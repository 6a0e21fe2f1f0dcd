package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcp-meal-plan/internal/models"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	stor, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "meal-plan.db"))
	require.NoError(t, err)
	t.Cleanup(func() { stor.Close() })
	return stor
}

func samplePlan(id, user string, createdAt time.Time) *models.Plan {
	return &models.Plan{
		ID:        id,
		Username:  user,
		CreatedAt: createdAt,
		Slots: []models.SlotPlan{
			{Name: "Desayuno", Groups: []models.GroupLine{
				{GroupID: 1, Name: "Frutas", Scalar: "2", Line: "• Frutas: 2 taza de melón, 1 taza de fresas",
					Items: []models.RenderedItem{{Source: "1 taza de melón", Text: "2 taza de melón", Quantity: "2", Display: "2", Description: "taza de melón", Scaled: true}}},
				{GroupID: 4, Name: "Grasas", Scalar: "1", Line: "• Grasas: al gusto"},
			}},
			{Name: "Cena", Groups: []models.GroupLine{
				{GroupID: 1, Name: "Frutas", Scalar: "1/2", Line: "• Frutas: ½ taza de melón"},
			}},
		},
		Issues: []models.LineIssue{{Slot: "Desayuno", GroupID: 4, Line: "3/0 cdita", Error: "malformed quantity"}},
	}
}

func TestSaveAndGetPlan(t *testing.T) {
	stor := newTestStorage(t)
	created := time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)

	require.NoError(t, stor.SavePlan(samplePlan("plan-1", "APMK", created)))

	got, err := stor.GetPlan("plan-1")
	require.NoError(t, err)
	assert.Equal(t, "APMK", got.Username)
	assert.True(t, created.Equal(got.CreatedAt))
	require.Len(t, got.Slots, 2)
	assert.Equal(t, []string{"• Frutas: 2 taza de melón, 1 taza de fresas", "• Grasas: al gusto"}, got.Slots[0].Lines())
	assert.Equal(t, "2", got.Slots[0].Groups[0].Items[0].Quantity)
	require.Len(t, got.Issues, 1)

	_, err = stor.GetPlan("missing")
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestSavePlan_RequiresID(t *testing.T) {
	stor := newTestStorage(t)
	assert.Error(t, stor.SavePlan(samplePlan("", "APMK", time.Now())))
}

func TestListPlans(t *testing.T) {
	stor := newTestStorage(t)
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, stor.SavePlan(samplePlan("a", "APMK", base)))
	require.NoError(t, stor.SavePlan(samplePlan("b", "APMK", base.Add(90*time.Millisecond))))
	require.NoError(t, stor.SavePlan(samplePlan("c", "PRK", base.Add(time.Hour))))

	mine, err := stor.ListPlans("APMK", 10)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "b", mine[0].ID)
	assert.Equal(t, "a", mine[1].ID)
	assert.Equal(t, 2, mine[0].SlotCount)
	assert.Equal(t, 3, mine[0].LineCount)

	all, err := stor.ListPlans("", 2)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "c", all[0].ID)
}
