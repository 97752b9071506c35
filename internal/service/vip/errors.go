package vip

import (
	"fmt"

	"github.com/kirinyoku/standpos/internal/domain"
)

var (
	ErrVipNotFound     = fmt.Errorf("vip account %w", domain.ErrNotFound)
	ErrNothingToSettle = fmt.Errorf("%w: vip balance is already zero", domain.ErrConflict)
)
