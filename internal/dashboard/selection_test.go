package dashboard

import (
	"testing"

	"iris-app/internal/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testColumns = []string{dataset.SepalLength, dataset.SepalWidth, dataset.PetalLength, dataset.PetalWidth}

func TestNewSelection_DefaultsToFirstTwo(t *testing.T) {
	sel := NewSelection(testColumns)
	assert.Equal(t, []string{dataset.SepalLength, dataset.SepalWidth}, sel.Columns())
	assert.Equal(t, 2, sel.Len())
}

func TestSelection_AddThirdRejected(t *testing.T) {
	sel := NewSelection(testColumns)

	err := sel.Add(dataset.PetalLength)
	assert.ErrorIs(t, err, ErrSelectionFull)
	assert.Equal(t, []string{dataset.SepalLength, dataset.SepalWidth}, sel.Columns())

	// Re-adding a selected column is not a third selection.
	assert.NoError(t, sel.Add(dataset.SepalWidth))
	assert.Equal(t, 2, sel.Len())
}

func TestSelection_RemoveThenAdd(t *testing.T) {
	sel := NewSelection(testColumns)

	assert.True(t, sel.Remove(dataset.SepalLength))
	assert.False(t, sel.Remove(dataset.SepalLength))
	require.NoError(t, sel.Add(dataset.PetalWidth))

	assert.Equal(t, []string{dataset.SepalWidth, dataset.PetalWidth}, sel.Columns())
}

func TestSelection_UnknownColumn(t *testing.T) {
	sel := NewSelection(testColumns)
	sel.Remove(dataset.SepalWidth)

	err := sel.Add("stem length (cm)")
	assert.ErrorIs(t, err, ErrUnknownColumn)
	assert.ErrorIs(t, err, dataset.ErrUnknownColumn)
	assert.Equal(t, 1, sel.Len())
}

func TestSelection_Set(t *testing.T) {
	sel := NewSelection(testColumns)

	require.NoError(t, sel.Set([]string{dataset.PetalWidth, dataset.PetalLength}))
	assert.Equal(t, []string{dataset.PetalWidth, dataset.PetalLength}, sel.Columns())

	require.NoError(t, sel.Set([]string{dataset.PetalWidth, dataset.PetalWidth}))
	assert.Equal(t, []string{dataset.PetalWidth}, sel.Columns())

	require.NoError(t, sel.Set(nil))
	assert.Equal(t, 0, sel.Len())

	err := sel.Set(testColumns[:3])
	assert.ErrorIs(t, err, ErrSelectionFull)
	assert.Equal(t, 0, sel.Len())

	err = sel.Set([]string{"nope"})
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestSelection_ColumnsIsCopy(t *testing.T) {
	sel := NewSelection(testColumns)
	cols := sel.Columns()
	cols[0] = "changed"
	assert.Equal(t, dataset.SepalLength, sel.Columns()[0])
}
