package httpgin

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/standpos/internal/domain"
	"github.com/kirinyoku/standpos/internal/repository"
	redisrepo "github.com/kirinyoku/standpos/internal/repository/redis"
	"github.com/kirinyoku/standpos/internal/service"
	"github.com/kirinyoku/standpos/internal/service/refund"
	"github.com/kirinyoku/standpos/internal/service/sales"
	"github.com/kirinyoku/standpos/internal/service/vip"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Deps holds the optional redis-backed collaborators of the router.
// Any of them may be nil; the matching feature is then off.
type Deps struct {
	Idempotency *redisrepo.IdempotencyStore
	Limiter     *redisrepo.SlidingWindowLimiter
	Feed        *redisrepo.LedgerPubSub
}

func NewRouter(
	svcs *service.Services,
	deps Deps,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), RequestIDMiddleware(), LoggingMiddleware(logger), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/config", handleGetConfig(svcs))
	r.GET("/sales", handleListSales(svcs))
	r.GET("/sales/:id", handleGetSale(svcs))
	r.GET("/sales/:id/events", handleListSaleEvents(svcs))
	r.GET("/vips", handleListVips(svcs))
	r.GET("/reconciliation", handleReconciliation(svcs))
	r.GET("/stream", handleStream(deps.Feed, logger))
	r.POST("/cart/quote", handleQuoteCart(svcs))

	writes := r.Group("/", RateLimit(deps.Limiter, logger))
	{
		writes.PUT("/config", handlePutConfig(svcs))
		writes.POST("/sales", handleFinalizeSale(svcs, deps.Idempotency))
		writes.POST("/sales/:id/refund", handleRefund(svcs))
		writes.POST("/vips/:name/settle", handleSettleVip(svcs))
		writes.POST("/reset", handleReset(svcs))
	}

	return r
}

// @Summary  Get event configuration
// @Success  200  {object}  domain.EventConfig
// @Success  304  "not modified"
// @Router   /config [get]
func handleGetConfig(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg, err := svcs.Catalog.Get(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithETag(c, http.StatusOK, cfg)
	}
}

// @Summary  Replace event configuration
// @Param    req  body  ConfigRequest  true  "full configuration, lists are not merged"
// @Success  204
// @Failure  400  {object}  ErrorResponse
// @Router   /config [put]
func handlePutConfig(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ConfigRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		if err := svcs.Catalog.Set(c.Request.Context(), req.toDomain()); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Price a cart at the current menu
// @Param    req  body  QuoteCartRequest  true  "flavor quantities, later items replace earlier ones"
// @Success  200  {object}  QuoteCartResponse
// @Failure  400  {object}  ErrorResponse
// @Router   /cart/quote [post]
func handleQuoteCart(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req QuoteCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		cart, err := svcs.Catalog.Quote(c.Request.Context(), req.toItems())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, quoteResponse(cart))
	}
}

// @Summary  List sales, newest first
// @Param    q  query  string  false  "sale id substring"
// @Success  200  {array}  domain.Sale
// @Router   /sales [get]
func handleListSales(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svcs.Sales.List(c.Request.Context(), c.Query("q"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// @Summary  Get sale
// @Param    id  path  int  true  "Sale ID"
// @Success  200  {object}  domain.Sale
// @Failure  404  {object}  ErrorResponse
// @Router   /sales/{id} [get]
func handleGetSale(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		sale, err := svcs.Sales.Get(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, sale)
	}
}

// @Summary  Audit trail of a sale, oldest first
// @Param    id  path  int  true  "Sale ID"
// @Success  200  {array}  domain.SaleEvent
// @Failure  404  {object}  ErrorResponse
// @Router   /sales/{id}/events [get]
func handleListSaleEvents(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		events, err := svcs.Sales.Events(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, events)
	}
}

// @Summary  Finalize sale (idempotent)
// @Param    req  body  FinalizeSaleRequest  true  "cart and payment"
// @Header   201  {string}  Idempotency-Key  "echo"
// @Success  201  {object}  FinalizeSaleResponse
// @Failure  400  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse  "idempotency key in progress"
// @Failure  429  {object}  ErrorResponse  "rate limited"
// @Failure  500  {object}  ErrorResponse
// @Failure  503  {object}  ErrorResponse  "busy, retry"
// @Router   /sales [post]
func handleFinalizeSale(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req FinalizeSaleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		ctx := c.Request.Context()

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemSale(idemKey)

			if payload, ok, _ := idem.Response(ctx, idemStorageKey); ok {
				replay(c, idemKey, payload)
				return
			}

			claimed, err := idem.Claim(ctx, idemStorageKey, 60*time.Second)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !claimed {
				if payload, ok, _ := idem.Response(ctx, idemStorageKey); ok {
					replay(c, idemKey, payload)
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(http.StatusConflict, ErrorResponse{Error: "idempotency key in progress"})
				return
			}
		}

		receipt, err := svcs.Sales.Finalize(ctx, req.toInput())
		if err != nil {
			if idemStorageKey != "" {
				_ = idem.Abandon(ctx, idemStorageKey)
			}
			respondErr(c, err)
			return
		}

		resp := finalizeResponse(receipt)

		if idemStorageKey != "" {
			// An unfinished claim answers retries with 409 until it expires.
			if b, err := json.Marshal(resp); err == nil {
				_ = idem.Complete(ctx, idemStorageKey, string(b))
			}
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, resp)
	}
}

// @Summary  Refund a sale, fully or one line
// @Param    id   path  int            true   "Sale ID"
// @Param    req  body  RefundRequest  false  "line_index for a partial refund"
// @Success  204
// @Failure  400  {object}  ErrorResponse  "line index out of range"
// @Failure  404  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse  "already refunded"
// @Router   /sales/{id}/refund [post]
func handleRefund(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		var req RefundRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, err.Error())
			return
		}

		var err error
		if req.LineIndex != nil {
			err = svcs.Refund.Partial(c.Request.Context(), id, *req.LineIndex)
		} else {
			err = svcs.Refund.Full(c.Request.Context(), id)
		}
		if err != nil {
			respondErr(c, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// @Summary  List VIP tabs
// @Success  200  {array}  domain.VipAccount
// @Router   /vips [get]
func handleListVips(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svcs.Vip.List(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// @Summary  Settle a VIP tab
// @Param    name  path  string            true  "VIP name"
// @Param    req   body  SettleVipRequest  true  "pix, card or cash"
// @Success  200  {object}  domain.VipSettlement
// @Failure  400  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse  "nothing to settle"
// @Router   /vips/{name}/settle [post]
func handleSettleVip(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SettleVipRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		st, err := svcs.Vip.Settle(
			c.Request.Context(),
			c.Param("name"),
			domain.PaymentMethod(req.PaymentMethod),
		)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, st)
	}
}

// @Summary  End-of-event reconciliation
// @Success  200  {object}  domain.Report
// @Router   /reconciliation [get]
func handleReconciliation(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := svcs.Reconcile.Report(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

// @Summary  Wipe all sales and VIP tabs and restore the default configuration
// @Success  204
// @Router   /reset [post]
func handleReset(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svcs.Catalog.Reset(c.Request.Context()); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// --- Helpers ---

func replay(c *gin.Context, idemKey, payload string) {
	c.Header("Idempotency-Key", idemKey)
	c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
}

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var ve domain.ValidationError

	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: ve.Error()})
	case errors.Is(err, sales.ErrSaleNotFound), errors.Is(err, refund.ErrSaleNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "sale not found"})
	case errors.Is(err, vip.ErrVipNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "vip account not found"})
	case errors.Is(err, refund.ErrAlreadyRefunded):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "sale already refunded"})
	case errors.Is(err, vip.ErrNothingToSettle):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "nothing to settle"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "conflict"})
	case errors.Is(err, repository.ErrRetryable):
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "busy, retry"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
