package cart

import (
	"encoding/json"
	"fmt"
)

// Snapshot is the persisted form of a cart. It is the serialize boundary
// between the in-memory container and client-side/session storage: stored
// content is validated on the way in and discarded when malformed.
type Snapshot struct {
	Lines []Line `json:"lines"`
	Open  bool   `json:"open"`
}

// Snapshot captures the cart for persistence.
func (c *Cart) Snapshot() Snapshot {
	return Snapshot{Lines: c.Lines(), Open: c.open}
}

// Encode serializes the cart snapshot.
func (c *Cart) Encode() ([]byte, error) {
	return json.Marshal(c.Snapshot())
}

// Decode rebuilds a cart from a persisted snapshot. Malformed payloads and
// snapshots violating cart invariants (duplicate product lines, quantities
// below one, negative prices or lead times) return an error so the caller
// can fall back to an empty cart instead of trusting stored content.
func Decode(data []byte) (*Cart, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}
	return FromSnapshot(snap)
}

// FromSnapshot validates a snapshot and builds the cart from it.
func FromSnapshot(snap Snapshot) (*Cart, error) {
	seen := make(map[string]bool, len(snap.Lines))
	for _, line := range snap.Lines {
		switch {
		case line.ProductID == "":
			return nil, fmt.Errorf("cart snapshot: line without product id")
		case seen[line.ProductID]:
			return nil, fmt.Errorf("cart snapshot: duplicate line for product %s", line.ProductID)
		case line.Quantity < 1:
			return nil, fmt.Errorf("cart snapshot: product %s has quantity %d", line.ProductID, line.Quantity)
		case line.UnitPrice < 0:
			return nil, fmt.Errorf("cart snapshot: product %s has negative price", line.ProductID)
		case line.MinOrderTime < 0:
			return nil, fmt.Errorf("cart snapshot: product %s has negative lead time", line.ProductID)
		}
		seen[line.ProductID] = true
	}

	lines := make([]Line, len(snap.Lines))
	copy(lines, snap.Lines)
	return &Cart{lines: lines, open: snap.Open}, nil
}
