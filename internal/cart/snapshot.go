package cart

import "github.com/adyen/cartcheck/internal/price"

// LineItem is one product row as rendered in the cart view.
// Position is only meaningful for the render it was read from.
type LineItem struct {
	Name     string
	Price    price.Amount
	Position int
}

// Snapshot is a single read of the cart's line items and reported total.
// It never updates itself; take a new one after every mutation.
type Snapshot struct {
	Items []LineItem
	Total price.Amount
}

// Sum returns the sum of all line item prices
func (s Snapshot) Sum() price.Amount {
	var sum price.Amount
	for _, item := range s.Items {
		sum = sum.Add(item.Price)
	}
	return sum
}

// Consistent reports whether the reported total equals the line item sum
func (s Snapshot) Consistent() bool {
	return s.Total == s.Sum()
}

// Check returns an *InvariantError when the snapshot is inconsistent
func (s Snapshot) Check() error {
	if s.Consistent() {
		return nil
	}
	return &InvariantError{Total: s.Total, Sum: s.Sum(), Items: len(s.Items)}
}

// Find returns the first line item with exactly the given name
func (s Snapshot) Find(name string) (LineItem, bool) {
	for _, item := range s.Items {
		if item.Name == name {
			return item, true
		}
	}
	return LineItem{}, false
}

// Names returns the line item names in position order
func (s Snapshot) Names() []string {
	names := make([]string, len(s.Items))
	for i, item := range s.Items {
		names[i] = item.Name
	}
	return names
}
