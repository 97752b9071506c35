package sales

import (
	"fmt"

	"github.com/kirinyoku/standpos/internal/domain"
)

var (
	ErrEmptyCart    = domain.Invalid("line_items", "cart is empty")
	ErrSaleNotFound = fmt.Errorf("sale %w", domain.ErrNotFound)
)
