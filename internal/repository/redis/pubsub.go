package redisrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type ChangeKind string

const (
	ChangeSaleFinalized ChangeKind = "sale_finalized"
	ChangeSaleRefunded  ChangeKind = "sale_refunded"
	ChangeVipSettled    ChangeKind = "vip_settled"
	ChangeConfigUpdated ChangeKind = "config_updated"
	ChangeSystemReset   ChangeKind = "system_reset"
)

// LedgerChange tells subscribers that something in the ledger moved.
// Subscribers refetch whatever they display; the message carries no state.
type LedgerChange struct {
	Type   ChangeKind `json:"type"`
	SaleID int64      `json:"sale_id,omitempty"`
	TsUnix int64      `json:"ts_unix"`
}

type LedgerPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewLedgerPubSub(rdb *redis.Client) *LedgerPubSub {
	return &LedgerPubSub{
		rdb:     rdb,
		channel: ChannelLedgerChanged(),
	}
}

// Publish is a no-op on a nil receiver.
func (p *LedgerPubSub) Publish(ctx context.Context, kind ChangeKind, saleID int64) error {
	const op = "redisrepo.LedgerPubSub.Publish"

	if p == nil {
		return nil
	}

	msg := LedgerChange{
		Type:   kind,
		SaleID: saleID,
		TsUnix: time.Now().Unix(),
	}

	b, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := p.rdb.Publish(ctx, p.channel, b).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Subscribe blocks delivering changes to handler until ctx is done.
// ready, when non-nil, is closed once the subscription is active.
func (p *LedgerPubSub) Subscribe(
	ctx context.Context,
	ready chan<- struct{},
	handler func(ctx context.Context, change LedgerChange),
) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	if ready != nil {
		close(ready)
	}

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var change LedgerChange
			if err := json.Unmarshal([]byte(m.Payload), &change); err == nil &&
				change.Type != "" {
				handler(ctx, change)
			}
		}
	}
}
