package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"totem-kiosk/internal/domain"
)

func comboProduct() domain.Product {
	return domain.Product{
		ID:    "combo",
		Name:  "Combo",
		Price: dec("25"),
		ModifierGroups: []domain.ModifierGroup{
			{
				ID: "drink", Title: "Drink", MinSelection: 1, MaxSelection: 1,
				Options: []domain.ModifierOption{
					{ID: "cola", Name: "Cola", Price: dec("0")},
					{ID: "juice", Name: "Juice", Price: dec("2")},
				},
			},
			{
				ID: "extras", Title: "Extras", MinSelection: 0, MaxSelection: 2,
				Options: []domain.ModifierOption{
					{ID: "bacon", Name: "Bacon", Price: dec("3")},
					{ID: "egg", Name: "Egg", Price: dec("2")},
					{ID: "cheese", Name: "Cheese", Price: dec("2.5")},
				},
			},
		},
	}
}

func TestSelectionSingleChoiceReplaces(t *testing.T) {
	s := NewSelection(comboProduct())

	require.NoError(t, s.Toggle("drink", "cola"))
	require.NoError(t, s.Toggle("drink", "juice"))

	assert.Equal(t, 1, s.Count("drink"))
	assert.True(t, s.IsSelected("drink", "juice"))
	assert.False(t, s.IsSelected("drink", "cola"))
}

func TestSelectionToggleTwiceDeselects(t *testing.T) {
	s := NewSelection(comboProduct())

	require.NoError(t, s.Toggle("extras", "bacon"))
	require.NoError(t, s.Toggle("extras", "bacon"))

	assert.Equal(t, 0, s.Count("extras"))
	assert.Empty(t, s.Selected())
}

func TestSelectionMultiChoiceCapIgnoresExtraTaps(t *testing.T) {
	s := NewSelection(comboProduct())

	require.NoError(t, s.Toggle("extras", "bacon"))
	require.NoError(t, s.Toggle("extras", "egg"))
	before := s.Selected()
	require.NoError(t, s.Toggle("extras", "cheese"))

	assert.Equal(t, 2, s.Count("extras"))
	assert.Equal(t, before, s.Selected())
	assert.False(t, s.IsSelected("extras", "cheese"))
}

func TestSelectionGroupsAreIndependent(t *testing.T) {
	s := NewSelection(comboProduct())

	require.NoError(t, s.Toggle("extras", "bacon"))
	require.NoError(t, s.Toggle("drink", "cola"))
	require.NoError(t, s.Toggle("drink", "juice"))

	assert.True(t, s.IsSelected("extras", "bacon"))
	assert.Len(t, s.Selected(), 2)
}

func TestSelectionSnapshotsOptionPrice(t *testing.T) {
	s := NewSelection(comboProduct())
	require.NoError(t, s.Toggle("drink", "juice"))

	got := s.Selected()
	require.Len(t, got, 1)
	assert.Equal(t, domain.SelectedModifier{GroupID: "drink", OptionID: "juice", Name: "Juice", Price: dec("2")}, got[0])
}

func TestSelectionUnknownOption(t *testing.T) {
	s := NewSelection(comboProduct())

	var vErr *domain.ValidationError
	require.ErrorAs(t, s.Toggle("sauce", "bbq"), &vErr)
	require.ErrorAs(t, s.Toggle("drink", "water"), &vErr)
	assert.Empty(t, s.Selected())
}

func TestSelectionValidateEnforcesMinimum(t *testing.T) {
	s := NewSelection(comboProduct())

	var vErr *domain.ValidationError
	require.ErrorAs(t, s.Validate(), &vErr)
	assert.Equal(t, "modifiers", vErr.Field)

	require.NoError(t, s.Toggle("drink", "cola"))
	assert.NoError(t, s.Validate())
}

func TestSelectionUncappedGroup(t *testing.T) {
	p := domain.Product{ID: "p", ModifierGroups: []domain.ModifierGroup{{
		ID: "sauces", MaxSelection: 0,
		Options: []domain.ModifierOption{{ID: "a"}, {ID: "b"}, {ID: "c"}},
	}}}
	s := NewSelection(p)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Toggle("sauces", id))
	}
	assert.Equal(t, 3, s.Count("sauces"))
}
