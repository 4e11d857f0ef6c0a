package entity

import (
	"fmt"
	"time"
)

// MaxQuantity bounds a single request and the accumulated quantity of a line.
const MaxQuantity = 10000

// CartLine is a single item in a cart. Price is the snapshot taken when the
// item was first added and is not refreshed afterwards.
type CartLine struct {
	ItemID   string
	Name     string
	Price    float64
	Quantity int
}

type Cart struct {
	ID        string
	Lines     []CartLine
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Merge adds quantity units of item to the cart. An existing line for the same
// item has its quantity increased; otherwise a new line is appended. The cart
// is left untouched when the resulting line would fall outside
// 1..MaxQuantity.
func (c *Cart) Merge(item *Item, quantity int) error {
	if quantity <= 0 || quantity > MaxQuantity {
		return fmt.Errorf("%w: quantity must be between 1 and %d", ErrValidation, MaxQuantity)
	}
	for i := range c.Lines {
		if c.Lines[i].ItemID == item.ID {
			if c.Lines[i].Quantity > MaxQuantity-quantity {
				return fmt.Errorf("%w: item %s would exceed %d units", ErrValidation, item.ID, MaxQuantity)
			}
			c.Lines[i].Quantity += quantity
			return nil
		}
	}
	c.Lines = append(c.Lines, CartLine{
		ItemID:   item.ID,
		Name:     item.Name,
		Price:    item.Price,
		Quantity: quantity,
	})
	return nil
}

// Clone returns a deep copy so store implementations never share line slices
// with their callers.
func (c *Cart) Clone() *Cart {
	out := *c
	out.Lines = make([]CartLine, len(c.Lines))
	copy(out.Lines, c.Lines)
	return &out
}
