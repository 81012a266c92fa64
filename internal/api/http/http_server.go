package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/olyamironova/orderbook/internal/api/dto"
	"github.com/olyamironova/orderbook/internal/core"
	"github.com/olyamironova/orderbook/internal/domain"
	"github.com/olyamironova/orderbook/internal/middleware"
)

type HTTPServer struct {
	Eng     *core.Engine
	limiter *middleware.RateLimiter
	log     *slog.Logger
}

func NewHTTPServer(eng *core.Engine, limiter *middleware.RateLimiter, logger *slog.Logger) *HTTPServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPServer{Eng: eng, limiter: limiter, log: logger.With("component", "http")}
}

func (s *HTTPServer) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "symbol": s.Eng.Symbol()})
	})

	orders := r.Group("/orders")
	if s.limiter != nil {
		orders.Use(s.limiter.Middleware())
	}
	orders.POST("", s.placeOrder)
	orders.GET("/:id", s.getOrder)
	orders.GET("/:id/trades", s.getTrades)

	r.GET("/orderbook", s.getOrderbook)
	r.GET("/orderbook/best-bid", s.bestBid)
	r.GET("/orderbook/best-ask", s.bestAsk)

	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests for up
// to shutdownTimeout.
func (s *HTTPServer) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("http server stopped")
	return nil
}

func (s *HTTPServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

func (s *HTTPServer) placeOrder(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	side, err := domain.ParseSide(req.Side)
	if err != nil {
		s.writeError(c, err)
		return
	}
	price, err := dto.ToPrice(req.Price)
	if err != nil {
		s.writeError(c, err)
		return
	}
	qty, err := dto.ToQuantity(req.Quantity)
	if err != nil {
		s.writeError(c, err)
		return
	}

	exec, err := s.Eng.PlaceOrder(c.Request.Context(), side, price, qty)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromExecution(exec))
}

func (s *HTTPServer) getOrder(c *gin.Context) {
	o, err := s.Eng.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.GetOrderResponse{Order: dto.FromOrderRecord(o)})
}

func (s *HTTPServer) getTrades(c *gin.Context) {
	trades, err := s.Eng.GetTradesForOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.GetTradesResponse{Trades: dto.FromTrades(trades)})
}

func (s *HTTPServer) getOrderbook(c *gin.Context) {
	depth, err := strconv.Atoi(c.DefaultQuery("depth", "0"))
	if err != nil || depth < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "depth must be a non-negative integer"})
		return
	}
	snap := s.Eng.CachedDepth(c.Request.Context(), depth)
	c.JSON(http.StatusOK, dto.FromSnapshot(snap))
}

func (s *HTTPServer) bestBid(c *gin.Context) {
	lvl, ok := s.Eng.BestBuy(c.Request.Context())
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no bids"})
		return
	}
	c.JSON(http.StatusOK, dto.FromLevel(lvl))
}

func (s *HTTPServer) bestAsk(c *gin.Context) {
	lvl, ok := s.Eng.BestSell(c.Request.Context())
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no asks"})
		return
	}
	c.JSON(http.StatusOK, dto.FromLevel(lvl))
}

func (s *HTTPServer) writeError(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.log.Error("request failed", "path", c.FullPath(), "err", err)
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidSide),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrQuantityOverflow),
		errors.Is(err, dto.ErrNotWholeNumber):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
