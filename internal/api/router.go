package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"boothnow-backend/config"
	"boothnow-backend/internal/metrics"
	"boothnow-backend/internal/mw"
)

// RouterOptions carries what the router wires around the handler.
type RouterOptions struct {
	Server   config.ServerConfig
	Metrics  config.MetricsConfig
	Verifier mw.TokenVerifier
	Cache    *cache.Cache
	Limiter  *mw.IPRateLimiter
	Registry *metrics.Metrics
}

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.Default()

	if opts.Metrics.Enabled && opts.Registry != nil {
		r.GET(opts.Metrics.Path, gin.WrapH(opts.Registry.Handler()))
	}

	caching := mw.Cache(opts.Cache, time.Duration(opts.Server.CacheTTLSeconds)*time.Second)
	auth := mw.Auth(opts.Verifier, h.booking)
	timeout := mw.Timeout(opts.Server.RequestTimeout)

	api := r.Group("/api")
	api.Use(mw.RateLimiter(opts.Limiter))
	{
		// Long-lived, so no request timeout.
		api.GET("/events", h.StreamEvents)

		public := api.Group("", timeout)
		public.GET("/booths", caching, h.ListBooths)
		public.GET("/booths/:id", caching, h.GetBooth)
		public.GET("/subscriptions", h.GetSubscription)
		public.PUT("/subscriptions", h.PutSubscription)
		public.DELETE("/subscriptions", h.DeleteSubscription)
		public.GET("/vapid_public_key", h.GetVAPIDPublicKey)

		private := api.Group("", timeout, auth)
		private.POST("/booths/:id/sessions", h.BookNow)
		private.POST("/booths/:id/reservations", h.PreBook)
		private.POST("/sessions/:id/end", h.EndSession)
		private.GET("/sessions/:id/live", h.GetLiveCost)
		private.POST("/reservations/:id/cancel", h.CancelReservation)
		private.GET("/me/sessions", h.ListMySessions)
		private.GET("/me/reservations", h.ListMyReservations)
	}

	return r
}
