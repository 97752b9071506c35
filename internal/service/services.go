package service

import (
	"log/slog"

	"github.com/kirinyoku/standpos/internal/export"
	"github.com/kirinyoku/standpos/internal/repository"
	redisrepo "github.com/kirinyoku/standpos/internal/repository/redis"
	"github.com/kirinyoku/standpos/internal/service/catalog"
	"github.com/kirinyoku/standpos/internal/service/notify"
	"github.com/kirinyoku/standpos/internal/service/reconcile"
	"github.com/kirinyoku/standpos/internal/service/refund"
	"github.com/kirinyoku/standpos/internal/service/sales"
	"github.com/kirinyoku/standpos/internal/service/vip"
)

type Services struct {
	Catalog   *catalog.Service
	Sales     *sales.Service
	Refund    *refund.Service
	Reconcile *reconcile.Service
	Vip       *vip.Service
}

type Config struct {
	Catalog   catalog.Config
	Sales     sales.Config
	Refund    refund.Config
	Reconcile reconcile.Config
	Vip       vip.Config
}

func NewServices(
	store repository.Store,
	cache *redisrepo.Cache,
	pubsub *redisrepo.LedgerPubSub,
	exporter *export.Exporter,
	log *slog.Logger,
	cfg Config,
) *Services {
	n := notify.New(store, pubsub, exporter, log)

	return &Services{
		Catalog:   catalog.New(store, cache, n, cfg.Catalog),
		Sales:     sales.New(store, n, cfg.Sales),
		Refund:    refund.New(store, n, cfg.Refund),
		Reconcile: reconcile.New(store, cfg.Reconcile),
		Vip:       vip.New(store, n, cfg.Vip),
	}
}
