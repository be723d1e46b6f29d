package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/ootd-recommender/internal/domain/outfit"
	"github.com/yanqian/ootd-recommender/internal/infra/config"
	"github.com/yanqian/ootd-recommender/internal/infra/llm/chatgpt"
	"github.com/yanqian/ootd-recommender/internal/infra/llm/tokens"
	"github.com/yanqian/ootd-recommender/internal/infra/profilerepo"
	"github.com/yanqian/ootd-recommender/internal/infra/wardroberepo"
	"github.com/yanqian/ootd-recommender/internal/infra/weatherstore"
)

func provideOutfitConfig(cfg *config.Config) outfit.Config {
	return outfit.Config{
		DefaultStrategy: outfit.Strategy(cfg.Outfit.DefaultStrategy),
		WeatherTTL:      cfg.Outfit.WeatherTTL,
	}
}

func provideLLMConfig(cfg *config.Config) outfit.LLMConfig {
	return outfit.LLMConfig{
		Model:          cfg.LLM.Model,
		Temperature:    cfg.LLM.Temperature,
		Prompt:         cfg.Outfit.Prompt,
		Timeout:        cfg.Outfit.LLMTimeout,
		MaxCandidates:  cfg.Outfit.MaxCandidates,
		MaxPromptItems: cfg.Outfit.MaxPromptItems,
		MaxAttributes:  cfg.Outfit.MaxAttributes,
	}
}

// provideChatClient returns nil without an API key; the llm strategy then always falls back.
func provideChatClient(cfg *config.Config, logger *slog.Logger) outfit.ChatClient {
	client, err := chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
	if err != nil {
		logger.Warn("chat client disabled, llm strategy will use fallback", "error", err)
		return nil
	}
	return chatgpt.NewBreakerClient(client, chatgpt.BreakerConfig{
		Name:             "chatgpt",
		FailureThreshold: cfg.LLM.Breaker.FailureThreshold,
		MaxRequests:      cfg.LLM.Breaker.MaxRequests,
		Interval:         cfg.LLM.Breaker.Interval,
		OpenTimeout:      cfg.LLM.Breaker.OpenTimeout,
	}, logger)
}

func provideTokenCounter(cfg *config.Config, logger *slog.Logger) outfit.TokenCounter {
	counter, err := tokens.NewCounter(cfg.LLM.Model)
	if err != nil {
		logger.Warn("token counter unavailable", "model", cfg.LLM.Model, "error", err)
		return nil
	}
	return counter
}

func provideEngines(llmCfg outfit.LLMConfig, client outfit.ChatClient, counter outfit.TokenCounter, logger *slog.Logger) []outfit.Engine {
	rule := outfit.NewRuleBasedEngine(logger)
	return []outfit.Engine{
		outfit.NewRandomEngine(outfit.DefaultRandFactory),
		rule,
		outfit.NewScoreBasedEngine(outfit.DefaultRandFactory, logger),
		outfit.NewLLMDelegateEngine(llmCfg, client, rule, counter, logger),
	}
}

// providePostgresPool returns nil when Postgres is not configured or unreachable.
func providePostgresPool(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory repositories")
		return nil
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repositories", "error", err)
		return nil
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repositories", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repositories", "error", err)
		pool.Close()
		return nil
	}
	logger.Info("postgres repositories enabled")
	return pool
}

func provideProfileRepository(pool *pgxpool.Pool) outfit.ProfileRepository {
	if pool == nil {
		return profilerepo.NewMemoryRepository()
	}
	return profilerepo.NewPostgresRepository(pool)
}

func provideWardrobeRepository(pool *pgxpool.Pool) outfit.WardrobeRepository {
	if pool == nil {
		return wardroberepo.NewMemoryRepository()
	}
	return wardroberepo.NewPostgresRepository(pool)
}

func provideWeatherStore(cfg *config.Config, logger *slog.Logger) outfit.WeatherStore {
	if cfg.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return weatherstore.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return weatherstore.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
			client.Close()
		} else {
			logger.Info("valkey weather store enabled", "addr", cfg.Valkey.Addr)
			return weatherstore.NewValkeyStore(client, cfg.Valkey.Prefix)
		}
	}
	return weatherstore.NewMemoryStore()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}
