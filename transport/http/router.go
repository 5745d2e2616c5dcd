package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/layer-3/walletgate/core"
	"github.com/layer-3/walletgate/service"
)

// Services are the business services exposed over HTTP
type Services struct {
	Auth   *service.AuthService
	Notes  *service.NoteService
	Grants *service.PrivateWalletService
}

// Options tune the router
type Options struct {
	Log            *zap.Logger
	Metrics        *Metrics
	ChallengeRPS   float64
	ChallengeBurst int
	CORSOrigins    []string
	TrustedProxies []string // CIDRs or IPs allowed to set X-Forwarded-For; empty trusts none
}

// NewRouter sets up the gin engine with all routes
func NewRouter(svcs Services, opts Options) *gin.Engine {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}
	if opts.ChallengeRPS <= 0 {
		opts.ChallengeRPS = 1
	}
	if opts.ChallengeBurst <= 0 {
		opts.ChallengeBurst = 5
	}

	router := gin.New()
	// Client IPs key the challenge limiter, so forwarded headers count only from known proxies
	if err := router.SetTrustedProxies(opts.TrustedProxies); err != nil {
		log.Error("invalid trusted proxies, trusting none", zap.Strings("trusted_proxies", opts.TrustedProxies), zap.Error(err))
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(Recovery(log))
	router.Use(RequestLogger(log))
	router.Use(metrics.Instrument())
	if len(opts.CORSOrigins) > 0 {
		router.Use(cors.New(corsConfig(opts.CORSOrigins)))
	}

	authHandlers := NewAuthHandlers(svcs.Auth, svcs.Grants, metrics, log)
	noteHandlers := NewNoteHandlers(svcs.Notes, log)
	adminHandlers := NewAdminHandlers(svcs.Grants, log)
	requireSession := AuthMiddleware(svcs.Auth, log)
	limiter := NewRateLimiter(opts.ChallengeRPS, opts.ChallengeBurst, log)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", metrics.Handler())

	auth := router.Group("/auth")
	{
		auth.POST("/challenge", limiter.Handler(), authHandlers.Challenge)
		auth.POST("/login", authHandlers.Login)
		auth.POST("/logout", requireSession, authHandlers.Logout)
	}

	api := router.Group("/api")
	api.Use(requireSession)
	{
		api.GET("/me", authHandlers.Me)
		api.GET("/private-wallets/me", authHandlers.MyPrivateAccess)

		api.GET("/notes", noteHandlers.List)
		api.POST("/notes", noteHandlers.Create)
		api.GET("/notes/:id", noteHandlers.Get)
		api.PUT("/notes/:id", noteHandlers.Update)
		api.DELETE("/notes/:id", noteHandlers.Delete)

		admin := api.Group("/admin")
		admin.Use(RequireRole(core.RoleAdmin))
		{
			admin.GET("/private-wallets", adminHandlers.ListPrivateWallets)
			admin.POST("/private-wallets", adminHandlers.GrantPrivateWallet)
			admin.DELETE("/private-wallets/:address", adminHandlers.RevokePrivateWallet)
		}
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}
