package order

import (
	"fmt"
	"strings"
)

// ErrEmptyItems is returned when an order request carries no line items.
var ErrEmptyItems = fmt.Errorf("items required")

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// DuplicateItemError indicates the same product appears in more than one line
// item of a single request.
type DuplicateItemError struct {
	ProductID string
}

func (e *DuplicateItemError) Error() string {
	return fmt.Sprintf("product %s appears more than once in the order", e.ProductID)
}

// ProductsNotFoundError indicates one or more requested products do not exist.
type ProductsNotFoundError struct {
	IDs []string
}

func (e *ProductsNotFoundError) Error() string {
	return fmt.Sprintf("products not found: %s", strings.Join(e.IDs, ", "))
}

// OutOfStockError indicates a line item requested more units than the product
// has in stock. The whole order is rejected; there is no partial fulfilment.
type OutOfStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("product %s out of stock: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}
