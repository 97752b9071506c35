package refund

import (
	"fmt"

	"github.com/kirinyoku/standpos/internal/domain"
)

var (
	ErrSaleNotFound    = fmt.Errorf("sale %w", domain.ErrNotFound)
	ErrAlreadyRefunded = fmt.Errorf("%w: sale already refunded", domain.ErrConflict)
	ErrLineOutOfRange  = domain.Invalid("line_index", "out of range")
)
