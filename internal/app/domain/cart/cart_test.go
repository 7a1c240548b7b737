package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosewood-bakery/storefront/internal/app/domain/product"
)

func croissant() product.Product {
	return product.Product{ID: "p1", Name: "Croissant Box", Price: 24.99, Image: "/img/croissant.jpg"}
}

func baguette() product.Product {
	return product.Product{ID: "p2", Name: "Baguette", Price: 15.99}
}

func weddingCake() product.Product {
	return product.Product{ID: "p3", Name: "Wedding Cake", Price: 250, PreOrder: true, MinOrderTime: 72}
}

func TestAddItemNewLine(t *testing.T) {
	c := New()
	c.AddItem(croissant())

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "p1", lines[0].ProductID)
	assert.Equal(t, 1, lines[0].Quantity)
	assert.Equal(t, 24.99, lines[0].UnitPrice)
}

func TestAddItemTwiceIncrementsQuantity(t *testing.T) {
	c := New()
	c.AddItem(croissant())
	c.AddItem(croissant())

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, 2, c.TotalItems())
}

func TestTotalPrice(t *testing.T) {
	c := New()
	c.AddItem(croissant())
	c.AddItem(baguette())

	assert.Equal(t, 40.98, c.TotalPrice())
}

func TestUpdateQuantityToZeroRemovesLine(t *testing.T) {
	c := New()
	c.AddItem(croissant())
	c.AddItem(baguette())

	c.UpdateQuantity("p1", 0)

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "p2", lines[0].ProductID)
}

func TestUpdateQuantitySetsValue(t *testing.T) {
	c := New()
	c.AddItem(croissant())

	c.UpdateQuantity("p1", 5)

	assert.Equal(t, 5, c.TotalItems())
}

func TestRemoveItemAbsentIsNoop(t *testing.T) {
	c := New()
	c.AddItem(croissant())

	c.RemoveItem("missing")

	assert.Len(t, c.Lines(), 1)
}

func TestClearKeepsVisibilityFlag(t *testing.T) {
	c := New()
	c.AddItem(croissant())
	c.Open()

	c.Clear()

	assert.Empty(t, c.Lines())
	assert.True(t, c.IsOpen())
}

func TestToggle(t *testing.T) {
	c := New()
	assert.False(t, c.IsOpen())
	c.Toggle()
	assert.True(t, c.IsOpen())
	c.Toggle()
	assert.False(t, c.IsOpen())
}

func TestMinOrderTimeOnlyCountsPreOrderLines(t *testing.T) {
	c := New()
	c.AddItem(croissant())
	assert.Equal(t, 0, c.MinOrderTime())

	c.AddItem(weddingCake())
	assert.Equal(t, 72, c.MinOrderTime())
}

func TestSnapshotRoundTrip(t *testing.T) {
	c := New()
	c.AddItem(croissant())
	c.AddItem(baguette())
	c.AddItem(croissant())
	c.Open()

	data, err := c.Encode()
	require.NoError(t, err)

	restored, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, c.Lines(), restored.Lines())
	assert.True(t, restored.IsOpen())
	assert.Equal(t, 40.98+24.99, restored.TotalPrice())
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	_, err := Decode([]byte(`{"lines": not json`))
	assert.Error(t, err)
}

func TestFromSnapshotRejectsInvalidLines(t *testing.T) {
	cases := []struct {
		name string
		snap Snapshot
	}{
		{"missing product id", Snapshot{Lines: []Line{{Quantity: 1}}}},
		{"duplicate product", Snapshot{Lines: []Line{{ProductID: "p1", Quantity: 1}, {ProductID: "p1", Quantity: 2}}}},
		{"zero quantity", Snapshot{Lines: []Line{{ProductID: "p1", Quantity: 0}}}},
		{"negative price", Snapshot{Lines: []Line{{ProductID: "p1", Quantity: 1, UnitPrice: -1}}}},
		{"negative lead time", Snapshot{Lines: []Line{{ProductID: "p1", Quantity: 1, MinOrderTime: -4}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromSnapshot(tc.snap)
			assert.Error(t, err)
		})
	}
}
