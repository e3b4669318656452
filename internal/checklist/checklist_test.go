package checklist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogShape(t *testing.T) {
	cats := Catalog()
	require.Len(t, cats, 4)
	for _, cat := range cats {
		assert.Len(t, cat.Items, 5, "category %s", cat.ID)
		for _, it := range cat.Items {
			assert.False(t, it.Checked)
			assert.Empty(t, it.Comment)
		}
	}
	assert.Equal(t, []string{CategoryHealth, CategoryWeather, CategoryAircraft, CategoryMission},
		[]string{cats[0].ID, cats[1].ID, cats[2].ID, cats[3].ID})
}

func TestScores(t *testing.T) {
	cl := New()

	scores := cl.Scores()
	for id, s := range scores {
		assert.Equal(t, 0, s, "category %s starts at zero", id)
	}

	require.NoError(t, cl.SetChecked(CategoryHealth, "health_1", true))
	require.NoError(t, cl.SetChecked(CategoryHealth, "health_4", true))
	assert.Equal(t, 2, cl.Scores()[CategoryHealth])

	// Unchecking goes back down.
	require.NoError(t, cl.SetChecked(CategoryHealth, "health_1", false))
	assert.Equal(t, 1, cl.Scores()[CategoryHealth])

	// All five checked caps at 5.
	for _, id := range []string{"weather_1", "weather_2", "weather_3", "weather_4", "weather_5"} {
		require.NoError(t, cl.SetChecked(CategoryWeather, id, true))
	}
	assert.Equal(t, 5, cl.Scores()[CategoryWeather])
}

func TestSetCheckedUnknownItem(t *testing.T) {
	cl := New()
	assert.ErrorIs(t, cl.SetChecked(CategoryHealth, "health_99", true), ErrItemNotFound)
	assert.ErrorIs(t, cl.SetChecked("nope", "health_1", true), ErrItemNotFound)
	assert.ErrorIs(t, cl.SetComment(CategoryMission, "mission_x", "hm"), ErrItemNotFound)
}

func TestBuildMitigationPlan(t *testing.T) {
	cl := New()

	// No comments leaves the base plan untouched.
	assert.Equal(t, "proceed with caution", cl.BuildMitigationPlan("proceed with caution"))

	require.NoError(t, cl.SetComment(CategoryHealth, "health_1", "tired"))
	got := cl.BuildMitigationPlan("proceed with caution")
	want := "proceed with caution\n\nDetalhes:\nSAÚDE - Repouso adequado (8h)?: tired"
	assert.Equal(t, want, got)

	// Blank comments are skipped; order follows the catalog.
	require.NoError(t, cl.SetComment(CategoryMission, "mission_3", "  "))
	require.NoError(t, cl.SetComment(CategoryWeather, "weather_2", "fog at dawn"))
	got = cl.BuildMitigationPlan("base")
	want = "base\n\nDetalhes:\n" +
		"SAÚDE - Repouso adequado (8h)?: tired\n" +
		"METEOROLOGIA - Visibilidade/Teto?: fog at dawn"
	assert.Equal(t, want, got)
}
