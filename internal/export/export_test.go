package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/types"
)

func sampleItems() []types.ShoppingListItem {
	return []types.ShoppingListItem{
		{IngredientID: 1, Name: "Flour", MeasurementUnit: "g", Amount: 300},
		{IngredientID: 2, Name: "Sugar", MeasurementUnit: "g", Amount: 50},
	}
}

func TestRenderText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, sampleItems()))
	assert.Equal(t, "Flour: 300 g\nSugar: 50 g\n", buf.String())
}

func TestRenderTextEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, nil))
	assert.Empty(t, buf.String())
}

func TestRenderPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderPDF(&buf, sampleItems()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestParseFormat(t *testing.T) {
	f, ok := ParseFormat("")
	assert.True(t, ok)
	assert.Equal(t, FormatText, f)
	assert.Equal(t, "shopping_cart.txt", f.Filename())

	f, ok = ParseFormat("pdf")
	assert.True(t, ok)
	assert.Equal(t, "application/pdf", f.ContentType())

	_, ok = ParseFormat("docx")
	assert.False(t, ok)
}
