package httpgin

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	redisrepo "github.com/kirinyoku/standpos/internal/repository/redis"
)

const streamHeartbeat = 15 * time.Second

// @Summary  Live ledger changes (server-sent events)
// @Produce  text/event-stream
// @Success  200  {object}  redisrepo.LedgerChange
// @Failure  503  {object}  ErrorResponse  "live feed disabled"
// @Router   /stream [get]
func handleStream(feed *redisrepo.LedgerPubSub, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if feed == nil {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "live feed disabled"})
			return
		}

		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()

		changes := make(chan redisrepo.LedgerChange, 16)
		ready := make(chan struct{})
		done := make(chan error, 1)

		go func() {
			done <- feed.Subscribe(ctx, ready, func(ctx context.Context, ch redisrepo.LedgerChange) {
				select {
				case changes <- ch:
				case <-ctx.Done():
				}
			})
		}()

		select {
		case <-ready:
		case err := <-done:
			respondErr(c, err)
			return
		case <-ctx.Done():
			return
		}

		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Status(http.StatusOK)

		c.SSEvent("ready", gin.H{"status": "ok"})
		c.Writer.Flush()

		ticker := time.NewTicker(streamHeartbeat)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err := <-done:
				if err != nil && ctx.Err() == nil {
					logger.Warn("ledger subscription ended", "error", err)
				}
				return
			case ch := <-changes:
				c.SSEvent(string(ch.Type), ch)
				c.Writer.Flush()
			case <-ticker.C:
				c.SSEvent("ping", gin.H{"ts_unix": time.Now().Unix()})
				c.Writer.Flush()
			}
		}
	}
}
