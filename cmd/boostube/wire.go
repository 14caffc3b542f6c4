package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/boostube/internal/config"
	"github.com/kailas-cloud/boostube/internal/db"
	dbRedis "github.com/kailas-cloud/boostube/internal/db/redis"
	"github.com/kailas-cloud/boostube/internal/domain"
	"github.com/kailas-cloud/boostube/internal/domain/tool"
	"github.com/kailas-cloud/boostube/internal/metrics"
	"github.com/kailas-cloud/boostube/internal/repository/respcache"
	"github.com/kailas-cloud/boostube/internal/transport/breaker"
	"github.com/kailas-cloud/boostube/internal/transport/gemini"
	"github.com/kailas-cloud/boostube/internal/transport/keyword"
	openaiGen "github.com/kailas-cloud/boostube/internal/transport/openai"
	generationuc "github.com/kailas-cloud/boostube/internal/usecase/generation"
	healthuc "github.com/kailas-cloud/boostube/internal/usecase/health"
	"github.com/kailas-cloud/boostube/internal/usecase/page"
	"github.com/kailas-cloud/boostube/internal/usecase/pipeline"
)

// components is the composition root shared by every command.
type components struct {
	cfg      config.Config
	logger   *zap.Logger
	registry *tool.Registry
	health   *healthuc.Service
	store    db.Store
	text     domain.Generator
	keywords pipeline.KeywordLookup
}

func build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*components, error) {
	registry, err := tool.NewRegistry(toolOverrides(cfg.Tools))
	if err != nil {
		return nil, fmt.Errorf("tool registry: %w", err)
	}

	c := &components{cfg: cfg, logger: logger, registry: registry}

	if cfg.Cache.Enabled {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create cache store: %w", err)
		}
		if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			store.Close()
			return nil, fmt.Errorf("cache not ready: %w", err)
		}
		c.store = store
		logger.Info("Connected to response cache", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	base, err := buildProvider(ctx, cfg.Generation, logger)
	if err != nil {
		c.close()
		return nil, err
	}
	logger.Info("Generation provider ready",
		zap.String("provider", cfg.Generation.Provider),
		zap.String("model", base.Model()),
	)

	var healthOpts []healthuc.Option
	text, genBreaker := buildGenerator(base, cfg, c.store, logger)
	c.text = text
	if genBreaker != nil {
		healthOpts = append(healthOpts, healthuc.WithBreaker("generation", genBreaker))
	}

	client, err := keyword.NewClient(&keyword.Config{
		BaseURL: cfg.Keywords.BaseURL,
		Timeout: cfg.Keywords.Timeout(),
		Logger:  logger,
	})
	if err != nil {
		c.close()
		return nil, err
	}
	c.keywords = client
	if !cfg.Breaker.Disabled {
		kwBreaker := breaker.NewKeywordLookup(client, breakerSettings("keywords", cfg.Breaker), logger)
		c.keywords = kwBreaker
		healthOpts = append(healthOpts, healthuc.WithBreaker("keywords", kwBreaker))
	}

	// Pass nil interfaces, not typed nil pointers, for absent components.
	var cache healthuc.CachePinger
	if c.store != nil {
		cache = c.store
	}
	c.health = healthuc.New(cache, base, healthOpts...)

	return c, nil
}

func (c *components) close() {
	if c.store != nil {
		c.store.Close()
	}
}

// provider is a base generation provider with a cheap availability check.
type provider interface {
	domain.Generator
	domain.HealthChecker
	Model() string
}

func buildProvider(ctx context.Context, cfg config.GenerationConfig, logger *zap.Logger) (provider, error) {
	active := cfg.Active()
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return openaiGen.NewGenerator(&openaiGen.Config{
			APIKey:   active.APIKey,
			BaseURL:  active.BaseURL,
			Model:    active.Model,
			Provider: cfg.Provider,
			Logger:   logger,
		}), nil
	default:
		g, err := gemini.NewGenerator(ctx, &gemini.Config{
			APIKey:  active.APIKey,
			BaseURL: active.BaseURL,
			Model:   active.Model,
			Logger:  logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini provider: %w", err)
		}
		return g, nil
	}
}

// buildGenerator assembles the shared decorator chain:
// provider -> breaker -> cache -> instrumented. Each tool adds its prompt template on top.
// The breaker is nil when disabled.
func buildGenerator(
	base domain.Generator, cfg config.Config, store db.Store, logger *zap.Logger,
) (domain.Generator, *breaker.Generator) {
	providerName := cfg.Generation.Provider
	model := cfg.Generation.Active().Model

	gen := base
	var cb *breaker.Generator
	if !cfg.Breaker.Disabled {
		cb = breaker.NewGenerator(gen, breakerSettings("generation", cfg.Breaker), logger)
		gen = cb
	}
	if store != nil {
		gen = respcache.New(gen, store, providerName+":"+model,
			time.Duration(cfg.Cache.TTLSec)*time.Second, metrics.GenerationCacheTotal, logger)
	}
	return generationuc.NewInstrumentedGenerator(gen, providerName, model, logger), cb
}

func breakerSettings(name string, cfg config.BreakerConfig) breaker.Settings {
	return breaker.Settings{
		Name:                name,
		ConsecutiveFailures: cfg.ConsecutiveFailures,
		OpenTimeout:         time.Duration(cfg.OpenTimeoutSec) * time.Second,
		HalfOpenRequests:    cfg.HalfOpenRequests,
	}
}

func toolOverrides(tools map[string]config.ToolConfig) map[tool.ID]tool.Override {
	if len(tools) == 0 {
		return nil
	}
	out := make(map[tool.ID]tool.Override, len(tools))
	for name, t := range tools {
		out[tool.ID(name)] = tool.Override{Prompt: t.Prompt, Shape: t.Shape, Count: t.Particles}
	}
	return out
}

// source builds the pipeline source for t.
func (c *components) source(t tool.Tool) pipeline.Source {
	if t.Kind == tool.KindKeyword {
		return pipeline.NewKeywordSource(c.keywords)
	}
	return pipeline.NewTextSource(domain.NewTemplateGenerator(c.text, t.Prompt), t.Shape)
}

func (c *components) pipelineOptions(t tool.Tool) []pipeline.Option {
	timeout := c.cfg.Generation.Timeout()
	if t.Kind == tool.KindKeyword {
		timeout = c.cfg.Keywords.Timeout()
	}
	return []pipeline.Option{
		pipeline.WithStalePolicy(pipeline.StalePolicy(c.cfg.Pipeline.StaleResponses)),
		pipeline.WithTimeout(timeout),
	}
}

func (c *components) newPage(t tool.Tool, vp page.Viewport) *page.Page {
	return page.New(t, c.source(t), vp, c.logger, c.pipelineOptions(t)...)
}

func (c *components) pages(vp page.Viewport) *page.Set {
	tools := c.registry.All()
	pages := make([]*page.Page, len(tools))
	for i, t := range tools {
		pages[i] = c.newPage(t, vp)
	}
	return page.NewSet(pages...)
}
