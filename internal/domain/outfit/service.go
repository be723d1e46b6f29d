package outfit

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/yanqian/ootd-recommender/pkg/errors"
	"github.com/yanqian/ootd-recommender/pkg/metrics"
)

// Config holds runtime knobs for the outfit service.
type Config struct {
	DefaultStrategy Strategy
	WeatherTTL      time.Duration
}

// Request captures the payload accepted by the recommendation endpoint.
type Request struct {
	UserID   int64    `json:"userId" validate:"gt=0"`
	Region   string   `json:"region" validate:"required,max=64"`
	Strategy Strategy `json:"strategy,omitempty" validate:"omitempty,oneof=random rule score llm"`
}

// Response is serialized back to API consumers.
type Response struct {
	Strategy      Strategy  `json:"strategy"`
	Season        Season    `json:"season"`
	DayPersonal   float64   `json:"dayPersonal"`
	NightPersonal float64   `json:"nightPersonal"`
	OuterNeeded   bool      `json:"outerNeeded"`
	Items         []Garment `json:"items"`
	Empty         bool      `json:"empty"`
	DurationMs    int64     `json:"durationMs,omitempty"`
}

// Service exposes outfit recommendation capabilities.
type Service interface {
	Recommend(ctx context.Context, req Request) (Response, error)
	SaveWeather(ctx context.Context, region string, weather Weather) error
}

type service struct {
	cfg      Config
	engines  map[Strategy]Engine
	profiles ProfileRepository
	wardrobe WardrobeRepository
	weather  WeatherStore
	logger   *slog.Logger
}

// NewService wires up the outfit domain.
func NewService(cfg Config, engines []Engine, profiles ProfileRepository, wardrobe WardrobeRepository, weather WeatherStore, logger *slog.Logger) Service {
	byName := make(map[Strategy]Engine, len(engines))
	for _, e := range engines {
		byName[e.Strategy()] = e
	}
	if cfg.DefaultStrategy == "" {
		cfg.DefaultStrategy = StrategyScore
	}
	return &service{
		cfg:      cfg,
		engines:  byName,
		profiles: profiles,
		wardrobe: wardrobe,
		weather:  weather,
		logger:   logger.With("component", "outfit.service"),
	}
}

func (s *service) Recommend(ctx context.Context, req Request) (Response, error) {
	start := time.Now()
	req.Region = strings.TrimSpace(req.Region)
	if err := validateRequest(req); err != nil {
		return Response{}, err
	}
	strategy := req.Strategy
	if strategy == "" {
		strategy = s.cfg.DefaultStrategy
	}
	engine, ok := s.engines[strategy]
	if !ok {
		return Response{}, apperrors.Wrap("invalid_input", "unsupported strategy "+string(strategy), nil)
	}

	var (
		profile    UserProfile
		hasProfile bool
		wardrobe   Wardrobe
		weather    Weather
		hasWeather bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, hasProfile, err = s.profiles.GetProfile(gctx, req.UserID)
		if err != nil {
			return apperrors.Wrap("repository_error", "failed to load profile", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		wardrobe, err = s.wardrobe.ListByOwner(gctx, req.UserID)
		if err != nil {
			return apperrors.Wrap("repository_error", "failed to load wardrobe", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		weather, hasWeather, err = s.weather.Latest(gctx, req.Region)
		if err != nil {
			return apperrors.Wrap("repository_error", "failed to load weather", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Response{}, err
	}
	if !hasWeather {
		return Response{}, apperrors.Wrap("weather_unavailable", "no weather snapshot for region "+req.Region, nil)
	}
	if !hasProfile {
		profile = DefaultProfile(req.UserID)
	}
	if err := ValidateInputs(profile, weather); err != nil {
		return Response{}, err
	}

	garments, err := engine.Recommend(ctx, profile, weather, wardrobe)
	if err != nil {
		metrics.Recommendations.WithLabelValues(string(strategy), "error").Inc()
		return Response{}, err
	}

	cond := DeriveConditions(profile, weather)
	items := garments
	if items == nil {
		items = []Garment{}
	}
	outcome := "ok"
	if len(items) == 0 {
		outcome = "empty"
	}
	metrics.Recommendations.WithLabelValues(string(strategy), outcome).Inc()
	metrics.RecommendedGarments.WithLabelValues(string(strategy)).Observe(float64(len(items)))
	s.logger.Info("outfit recommended",
		"user_id", req.UserID,
		"region", req.Region,
		"strategy", strategy,
		"season", cond.Season,
		"day_personal", cond.DayPersonal,
		"night_personal", cond.NightPersonal,
		"items", len(items),
		"wardrobe", len(wardrobe),
	)

	return Response{
		Strategy:      strategy,
		Season:        cond.Season,
		DayPersonal:   round1(cond.DayPersonal),
		NightPersonal: round1(cond.NightPersonal),
		OuterNeeded:   cond.OuterNeeded,
		Items:         items,
		Empty:         len(items) == 0,
		DurationMs:    time.Since(start).Milliseconds(),
	}, nil
}

func (s *service) SaveWeather(ctx context.Context, region string, weather Weather) error {
	region = strings.TrimSpace(region)
	if region == "" {
		return apperrors.Wrap("invalid_input", "region cannot be empty", nil)
	}
	if err := ValidateInputs(DefaultProfile(0), weather); err != nil {
		return err
	}
	if err := s.weather.Save(ctx, region, weather, s.cfg.WeatherTTL); err != nil {
		return apperrors.Wrap("repository_error", "failed to store weather", err)
	}
	s.logger.Info("weather snapshot stored", "region", region, "forecast_at", weather.Instant())
	return nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
