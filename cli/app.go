package cli

import (
	"context"
	"fmt"
	"log/slog"

	"parcel-delivery-api/cache"
	"parcel-delivery-api/config"
	"parcel-delivery-api/gateway"
	"parcel-delivery-api/middleware"
	"parcel-delivery-api/services"
	"parcel-delivery-api/store"
	"parcel-delivery-api/store/mongostore"
	"parcel-delivery-api/store/sqlstore"

	"gorm.io/gorm/logger"
)

// app holds the long-lived clients shared by every request
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	store    store.Store
	roles    *cache.RoleCache
	services *services.Services
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log := cfg.Logger()
	slog.SetDefault(log)
	return cfg, log, nil
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case "mongo":
		return mongostore.Open(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoTransactions)
	case "sqlite", "postgres":
		return sqlstore.Open(cfg.StoreDriver, cfg.DatabaseDSN, logger.Warn)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	log.Info("store connected", "driver", cfg.StoreDriver)

	a := &app{cfg: cfg, log: log, store: st}

	var roleCache services.RoleCache
	if cfg.RedisURL != "" {
		a.roles, err = cache.Connect(ctx, cfg.RedisURL, cfg.RoleCacheTTL)
		if err != nil {
			_ = st.Close(ctx)
			return nil, err
		}
		roleCache = a.roles
		log.Info("role cache enabled", "ttl", cfg.RoleCacheTTL)
	}

	a.services = services.New(st, gateway.NewStripe(cfg.PaymentGatewayKey, nil), roleCache, services.Options{
		Currency:       cfg.PaymentCurrency,
		VerifyPayments: cfg.VerifyPayments,
		Logger:         log,
	})
	return a, nil
}

func (a *app) verifier(ctx context.Context) (middleware.TokenVerifier, error) {
	switch a.cfg.AuthProvider {
	case "jwt":
		return middleware.NewJWTVerifier(a.cfg.JWTSecret), nil
	case "firebase":
		return middleware.NewFirebaseVerifier(ctx, a.cfg.FirebaseCredentials)
	default:
		return nil, fmt.Errorf("unknown auth provider %q", a.cfg.AuthProvider)
	}
}

func (a *app) close(ctx context.Context) {
	if a.roles != nil {
		if err := a.roles.Close(); err != nil {
			a.log.Warn("close role cache", "error", err)
		}
	}
	if err := a.store.Close(ctx); err != nil {
		a.log.Warn("close store", "error", err)
	}
}
