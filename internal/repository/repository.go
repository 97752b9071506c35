package repository

import (
	"context"

	"github.com/kirinyoku/standpos/internal/domain"
	"github.com/shopspring/decimal"
)

// Sales persists sale records and their audit events.
type Sales interface {
	Insert(ctx context.Context, sale domain.Sale) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Sale, error)
	// GetForUpdate loads a sale and locks it until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*domain.Sale, error)
	// List returns every sale, most recent first.
	List(ctx context.Context) ([]domain.Sale, error)
	UpdateLines(ctx context.Context, id int64, lines []domain.CartLine, total decimal.Decimal) error
	UpdateStatus(ctx context.Context, id int64, status domain.SaleStatus) error
	AppendEvent(ctx context.Context, ev domain.SaleEvent) error
	// ListEvents returns the audit events of a sale, oldest first.
	ListEvents(ctx context.Context, saleID int64) ([]domain.SaleEvent, error)
	DeleteAll(ctx context.Context) error
}

// Vips persists VIP running tabs and their settlements.
type Vips interface {
	// Accrue creates the account with amount or adds amount to its balance.
	Accrue(ctx context.Context, name string, amount decimal.Decimal) error
	Get(ctx context.Context, name string) (*domain.VipAccount, error)
	GetForUpdate(ctx context.Context, name string) (*domain.VipAccount, error)
	List(ctx context.Context) ([]domain.VipAccount, error)
	// Settle stores the settlement and sets the account balance to zero.
	Settle(ctx context.Context, s domain.VipSettlement) (int64, error)
	DeleteAll(ctx context.Context) error
}

// EventConfigs persists the singleton event configuration.
type EventConfigs interface {
	Get(ctx context.Context) (domain.EventConfig, error)
	Save(ctx context.Context, cfg domain.EventConfig) error
}

// Tx groups the repositories bound to one transaction.
type Tx interface {
	Sales() Sales
	Vips() Vips
	Config() EventConfigs
}

// Store exposes repositories outside of a transaction and runs units of work.
// InTx commits only if fn returns nil; otherwise nothing fn wrote is visible.
type Store interface {
	Tx
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
