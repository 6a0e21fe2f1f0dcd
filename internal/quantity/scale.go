// internal/quantity/scale.go
package quantity

// Scale multiplies q by factor exactly.
func Scale(q, factor Rational) Rational {
	return q.Mul(factor)
}

// ScaleItem scales the quantity of item. Items without a quantity are
// returned unchanged.
func ScaleItem(item Item, factor Rational) Item {
	if !item.HasQuantity {
		return item
	}
	item.Quantity = Scale(item.Quantity, factor)
	return item
}
