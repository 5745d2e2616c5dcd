// Package app wires configuration, storage, messaging and transport into a runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/layer-3/walletgate/adapters/cache"
	"github.com/layer-3/walletgate/adapters/events"
	"github.com/layer-3/walletgate/adapters/store"
	"github.com/layer-3/walletgate/adapters/tokenizer"
	"github.com/layer-3/walletgate/internal/config"
	"github.com/layer-3/walletgate/internal/logger"
	"github.com/layer-3/walletgate/ports"
	"github.com/layer-3/walletgate/service"
	transport "github.com/layer-3/walletgate/transport/http"
)

// Platform holds the wired services and the resources they own
type Platform struct {
	cfg *config.Config
	log *zap.Logger

	Auth   *service.AuthService
	Notes  *service.NoteService
	Grants *service.PrivateWalletService
	Router *gin.Engine

	closers []func() error
}

type repositories struct {
	accounts ports.AccountStore
	notes    ports.NoteStore
	grants   ports.GrantStore
}

// New builds every component described by cfg. Close must be called to
// release database, redis and publisher resources.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Platform, error) {
	p := &Platform{cfg: cfg, log: log}

	repos, err := p.openRepositories(cfg.Store)
	if err != nil {
		p.Close()
		return nil, err
	}

	revocations, notesCache, publisher, err := p.openMessaging(ctx, cfg.Redis)
	if err != nil {
		p.Close()
		return nil, err
	}

	signKey, ephemeral, err := tokenizer.LoadSigningKey(cfg.Auth.SigningKeyFile)
	if err != nil {
		p.Close()
		return nil, err
	}
	if ephemeral {
		log.Warn("no signing key configured, using an ephemeral key; sessions will not survive a restart")
	}

	eventPub := events.NewWatermillPublisher(publisher)

	p.Auth = service.NewAuthService(
		repos.accounts,
		tokenizer.NewJWTTokenizer(signKey, cfg.Auth.Issuer),
		revocations,
		eventPub,
		service.WithLogger(log.Named("auth")),
		service.WithMessageFields(cfg.Auth.Domain, cfg.Auth.URI, cfg.Auth.Greeting),
		service.WithSessionTTL(cfg.Auth.SessionTTL),
		service.WithNonceRotation(cfg.Auth.RotateNonceOnLogin),
	)
	p.Notes = service.NewNoteService(repos.notes, notesCache, cfg.Cache.NotesTTL, log.Named("notes"))
	p.Grants = service.NewPrivateWalletService(repos.grants, eventPub, log.Named("grants"))

	p.Router = transport.NewRouter(
		transport.Services{Auth: p.Auth, Notes: p.Notes, Grants: p.Grants},
		transport.Options{
			Log:            log.Named("http"),
			ChallengeRPS:   cfg.HTTP.ChallengeRPS,
			ChallengeBurst: cfg.HTTP.ChallengeBurst,
			CORSOrigins:    cfg.HTTP.CORSOrigins,
			TrustedProxies: cfg.HTTP.TrustedProxies,
		},
	)

	return p, nil
}

func (p *Platform) openRepositories(cfg config.StoreConfig) (repositories, error) {
	if cfg.Driver == "memory" {
		p.log.Info("using in-memory store")
		return repositories{
			accounts: store.NewMemoryAccountStore(),
			notes:    store.NewMemoryNoteStore(),
			grants:   store.NewMemoryGrantStore(),
		}, nil
	}

	db, err := store.OpenGorm(cfg.Driver, cfg.DSN, p.log.Named("sql"))
	if err != nil {
		return repositories{}, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return repositories{}, fmt.Errorf("failed to get sql handle: %w", err)
	}
	p.closers = append(p.closers, sqlDB.Close)

	gs := store.NewGormStore(db)
	if err := gs.AutoMigrate(); err != nil {
		return repositories{}, fmt.Errorf("failed to migrate database: %w", err)
	}

	p.log.Info("using sql store", zap.String("driver", cfg.Driver))
	return repositories{accounts: gs, notes: gs, grants: gs}, nil
}

// openMessaging returns the revocation store, cache and event publisher.
// Without a redis URL everything stays in process.
func (p *Platform) openMessaging(ctx context.Context, cfg config.RedisConfig) (ports.Store, ports.Cache, message.Publisher, error) {
	wmLogger := logger.NewWatermillAdapter(p.log.Named("events"))

	if cfg.URL == "" {
		pubSub := gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
		p.closers = append(p.closers, pubSub.Close)
		return store.NewMemoryStore(), cache.NewMemoryCache(), pubSub, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	p.closers = append(p.closers, func() error {
		// The stream publisher closes the client it was given
		if err := client.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			return err
		}
		return nil
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to reach redis: %w", err)
	}

	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{Client: client}, wmLogger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create redis publisher: %w", err)
	}
	p.closers = append(p.closers, publisher.Close)

	p.log.Info("using redis", zap.String("addr", opts.Addr))
	return store.NewRedisStore(client), cache.NewRedisCache(client, "walletgate:cache:"), publisher, nil
}

// Run serves HTTP on the configured address until ctx is cancelled
func (p *Platform) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", p.cfg.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", p.cfg.HTTP.Addr, err)
	}
	return p.Serve(ctx, ln)
}

// Serve serves HTTP on ln until ctx is cancelled, then shuts down gracefully
func (p *Platform) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           p.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		p.log.Info("http server listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	grace := p.cfg.HTTP.ShutdownGrace
	if grace <= 0 {
		grace = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	p.log.Info("shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}

// Close releases resources in reverse order of acquisition
func (p *Platform) Close() error {
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	p.closers = nil
	return errors.Join(errs...)
}
