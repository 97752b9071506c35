// Package notify runs the after-commit side effects shared by the write services:
// rewriting the CSV snapshot and announcing the change on the ledger channel.
// Failures are logged and never reach the caller; the write is already committed.
package notify

import (
	"context"
	"log/slog"

	"github.com/kirinyoku/standpos/internal/export"
	"github.com/kirinyoku/standpos/internal/repository"
	redisrepo "github.com/kirinyoku/standpos/internal/repository/redis"
)

// Notifier is safe to use as a nil pointer; it then does nothing.
type Notifier struct {
	store    repository.Store
	pubsub   *redisrepo.LedgerPubSub
	exporter *export.Exporter
	log      *slog.Logger
}

func New(
	store repository.Store,
	pubsub *redisrepo.LedgerPubSub,
	exporter *export.Exporter,
	log *slog.Logger,
) *Notifier {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Notifier{
		store:    store,
		pubsub:   pubsub,
		exporter: exporter,
		log:      log,
	}
}

// LedgerChanged rewrites the snapshot export and publishes kind.
func (n *Notifier) LedgerChanged(ctx context.Context, kind redisrepo.ChangeKind, saleID int64) {
	if n == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)

	if err := n.snapshot(ctx); err != nil {
		n.log.Warn("snapshot export failed", "kind", kind, "sale_id", saleID, "error", err)
	}

	n.publish(ctx, kind, saleID)
}

func (n *Notifier) ConfigChanged(ctx context.Context) {
	if n == nil {
		return
	}
	n.publish(context.WithoutCancel(ctx), redisrepo.ChangeConfigUpdated, 0)
}

// Reset removes the snapshot files and publishes system_reset.
func (n *Notifier) Reset(ctx context.Context) {
	if n == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)

	if err := n.exporter.Remove(); err != nil {
		n.log.Warn("snapshot removal failed", "error", err)
	}

	n.publish(ctx, redisrepo.ChangeSystemReset, 0)
}

func (n *Notifier) snapshot(ctx context.Context) error {
	if n.exporter == nil {
		return nil
	}

	sales, err := n.store.Sales().List(ctx)
	if err != nil {
		return err
	}

	vips, err := n.store.Vips().List(ctx)
	if err != nil {
		return err
	}

	return n.exporter.Write(sales, vips)
}

func (n *Notifier) publish(ctx context.Context, kind redisrepo.ChangeKind, saleID int64) {
	if err := n.pubsub.Publish(ctx, kind, saleID); err != nil {
		n.log.Warn("publish ledger change failed", "kind", kind, "sale_id", saleID, "error", err)
	}
}
