package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/placelist-cli/internal/arbiter"
	"github.com/sells-group/placelist-cli/internal/curate"
	"github.com/sells-group/placelist-cli/internal/resolver"
	"github.com/sells-group/placelist-cli/internal/store"
	anthropicpkg "github.com/sells-group/placelist-cli/pkg/anthropic"
	"github.com/sells-group/placelist-cli/pkg/places"
)

// resolverEnv holds the initialized store, clients, and resolver shared by
// the resolve/batch/serve/cache commands.
type resolverEnv struct {
	Store    store.Store // nil when the cache is disabled
	Resolver *resolver.Resolver
}

// Close releases resources held by the resolver environment.
func (re *resolverEnv) Close() {
	if re.Store != nil {
		_ = re.Store.Close()
	}
}

// initResolver validates config for mode, opens the cache store, builds the
// places client and the optional grey-zone arbiter, and wires the resolver.
// Callers should defer env.Close().
func initResolver(ctx context.Context, mode string) (*resolverEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if st != nil {
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, eris.Wrap(err, "migrate store")
		}
	}

	directory := places.NewClient(cfg.Places.APIKey,
		places.WithBaseURL(cfg.Places.BaseURL),
		places.WithRateLimit(cfg.Places.RateLimit),
		places.WithMaxResults(cfg.Places.MaxResults),
	)

	// The arbiter is optional: without an Anthropic key, grey-zone scores
	// simply stand as computed.
	var arb *arbiter.Arbiter
	if cfg.Anthropic.Key != "" {
		arbCfg := arbiter.DefaultConfig()
		arbCfg.GreyZoneMin = cfg.Resolver.GreyZoneMin
		arbCfg.GreyZoneMax = cfg.Resolver.GreyZoneMax
		if cfg.Anthropic.Model != "" {
			arbCfg.Model = cfg.Anthropic.Model
		}
		if cfg.Anthropic.MaxTokens > 0 {
			arbCfg.MaxTokens = int64(cfg.Anthropic.MaxTokens)
		}
		arb = arbiter.New(anthropicpkg.NewClient(cfg.Anthropic.Key), arbCfg)
	} else {
		zap.L().Debug("PLACELIST_ANTHROPIC_KEY not set, grey-zone arbitration disabled")
	}

	resCfg := resolver.DefaultConfig()
	resCfg.MinConfidence = cfg.Resolver.MinConfidence
	resCfg.DetailsThreshold = cfg.Resolver.DetailsThreshold
	resCfg.RequirePhoto = cfg.Resolver.RequirePhoto
	resCfg.RefreshPhotos = cfg.Resolver.RefreshPhotos
	resCfg.SearchRadiusMeters = cfg.Places.RadiusMeters

	res, err := resolver.New(directory, arb, st, resCfg)
	if err != nil {
		if st != nil {
			_ = st.Close()
		}
		return nil, err
	}

	return &resolverEnv{Store: st, Resolver: res}, nil
}

// initStore opens the configured cache backend. The "none" driver disables
// caching entirely.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		st, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return nil, eris.Wrap(err, "open sqlite store")
		}
		return st, nil
	case "postgres":
		st, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, eris.Wrap(err, "open postgres store")
		}
		return st, nil
	case "none", "":
		zap.L().Info("resolution cache disabled")
		return nil, nil
	}
	return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// resolverConfig reconstructs the resolver thresholds for publishability
// checks outside the resolver itself.
func resolverConfig() resolver.Config {
	resCfg := resolver.DefaultConfig()
	resCfg.MinConfidence = cfg.Resolver.MinConfidence
	resCfg.DetailsThreshold = cfg.Resolver.DetailsThreshold
	resCfg.RequirePhoto = cfg.Resolver.RequirePhoto
	return resCfg
}

// curateConfig builds the curation weights from config.
func curateConfig() curate.Config {
	cuCfg := curate.DefaultConfig()
	if cfg.Curate.KeepRatio > 0 {
		cuCfg.KeepRatio = cfg.Curate.KeepRatio
	}
	if cfg.Curate.ShuffleSeed != 0 {
		cuCfg.ShuffleSeed = cfg.Curate.ShuffleSeed
	}
	cuCfg.MaxShuffleOffset = cfg.Curate.MaxShuffleOffset
	return cuCfg
}
