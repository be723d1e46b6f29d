package outfit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/ootd-recommender/pkg/errors"
)

type stubProfiles struct {
	profile UserProfile
	found   bool
	err     error
}

func (s stubProfiles) GetProfile(context.Context, int64) (UserProfile, bool, error) {
	return s.profile, s.found, s.err
}

type stubWardrobe struct {
	wardrobe Wardrobe
	err      error
}

func (s stubWardrobe) ListByOwner(context.Context, int64) (Wardrobe, error) {
	return s.wardrobe, s.err
}

type stubWeather struct {
	mu      sync.Mutex
	weather Weather
	found   bool
	err     error
	saved   map[string]time.Duration
}

func (s *stubWeather) Latest(context.Context, string) (Weather, bool, error) {
	return s.weather, s.found, s.err
}

func (s *stubWeather) Save(_ context.Context, region string, _ Weather, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.saved == nil {
		s.saved = make(map[string]time.Duration)
	}
	s.saved[region] = ttl
	return nil
}

type recordingEngine struct {
	strategy Strategy
	user     UserProfile
	out      []Garment
	err      error
}

func (e *recordingEngine) Strategy() Strategy { return e.strategy }

func (e *recordingEngine) Recommend(_ context.Context, user UserProfile, _ Weather, _ Wardrobe) ([]Garment, error) {
	e.user = user
	return e.out, e.err
}

func newServiceUnderTest(profiles ProfileRepository, wardrobe WardrobeRepository, weather WeatherStore, engines ...Engine) Service {
	return NewService(Config{WeatherTTL: time.Hour}, engines, profiles, wardrobe, weather, newTestLogger())
}

func TestServiceRecommendDefaultsToScoreStrategy(t *testing.T) {
	items := []Garment{garment("코트", CategoryOuter)}
	score := &recordingEngine{strategy: StrategyScore, out: items}
	rule := &recordingEngine{strategy: StrategyRule}
	weather := &stubWeather{weather: coolSpringWeather(), found: true}
	profiles := stubProfiles{profile: UserProfile{UserID: 7, TemperatureSensitivity: 1}, found: true}

	svc := newServiceUnderTest(profiles, stubWardrobe{wardrobe: fullWardrobe()}, weather, score, rule)
	resp, err := svc.Recommend(context.Background(), Request{UserID: 7, Region: " seoul "})
	require.NoError(t, err)
	require.Equal(t, StrategyScore, resp.Strategy)
	require.Equal(t, items, resp.Items)
	require.False(t, resp.Empty)
	require.Equal(t, 1, score.user.TemperatureSensitivity)
	require.Equal(t, SeasonSpring, resp.Season)
	require.Equal(t, 12.0, resp.DayPersonal)
	require.Equal(t, 6.0, resp.NightPersonal)
	require.True(t, resp.OuterNeeded)
}

func TestServiceRecommendUsesNeutralProfileWhenMissing(t *testing.T) {
	rule := &recordingEngine{strategy: StrategyRule}
	svc := newServiceUnderTest(stubProfiles{}, stubWardrobe{}, &stubWeather{weather: coolSpringWeather(), found: true}, rule)

	resp, err := svc.Recommend(context.Background(), Request{UserID: 9, Region: "seoul", Strategy: StrategyRule})
	require.NoError(t, err)
	require.Equal(t, DefaultProfile(9), rule.user)
	require.True(t, resp.Empty)
	require.NotNil(t, resp.Items)
	require.Empty(t, resp.Items)
}

func TestServiceRecommendErrors(t *testing.T) {
	ctx := context.Background()
	engine := &recordingEngine{strategy: StrategyScore}
	okWeather := &stubWeather{weather: coolSpringWeather(), found: true}

	t.Run("invalid request", func(t *testing.T) {
		svc := newServiceUnderTest(stubProfiles{}, stubWardrobe{}, okWeather, engine)
		_, err := svc.Recommend(ctx, Request{UserID: 0, Region: "seoul"})
		require.True(t, apperrors.IsCode(err, "invalid_input"))
		_, err = svc.Recommend(ctx, Request{UserID: 1, Region: "  "})
		require.True(t, apperrors.IsCode(err, "invalid_input"))
		_, err = svc.Recommend(ctx, Request{UserID: 1, Region: "seoul", Strategy: "vibes"})
		require.True(t, apperrors.IsCode(err, "invalid_input"))
	})
	t.Run("strategy not wired", func(t *testing.T) {
		svc := newServiceUnderTest(stubProfiles{}, stubWardrobe{}, okWeather, engine)
		_, err := svc.Recommend(ctx, Request{UserID: 1, Region: "seoul", Strategy: StrategyLLM})
		require.True(t, apperrors.IsCode(err, "invalid_input"))
	})
	t.Run("weather missing", func(t *testing.T) {
		svc := newServiceUnderTest(stubProfiles{}, stubWardrobe{}, &stubWeather{}, engine)
		_, err := svc.Recommend(ctx, Request{UserID: 1, Region: "seoul"})
		require.True(t, apperrors.IsCode(err, "weather_unavailable"))
	})
	t.Run("repository failure", func(t *testing.T) {
		boom := errors.New("connection refused")
		svc := newServiceUnderTest(stubProfiles{}, stubWardrobe{err: boom}, okWeather, engine)
		_, err := svc.Recommend(ctx, Request{UserID: 1, Region: "seoul"})
		require.True(t, apperrors.IsCode(err, "repository_error"))
		require.ErrorIs(t, err, boom)
	})
	t.Run("invalid stored weather", func(t *testing.T) {
		bad := coolSpringWeather()
		bad.PrecipitationType = "HAIL"
		svc := newServiceUnderTest(stubProfiles{}, stubWardrobe{}, &stubWeather{weather: bad, found: true}, engine)
		_, err := svc.Recommend(ctx, Request{UserID: 1, Region: "seoul"})
		require.True(t, apperrors.IsCode(err, "invalid_input"))
	})
	t.Run("engine failure", func(t *testing.T) {
		failing := &recordingEngine{strategy: StrategyScore, err: apperrors.Wrap("invalid_input", "invalid user profile", nil)}
		svc := newServiceUnderTest(stubProfiles{}, stubWardrobe{}, okWeather, failing)
		_, err := svc.Recommend(ctx, Request{UserID: 1, Region: "seoul"})
		require.True(t, apperrors.IsCode(err, "invalid_input"))
	})
}

func TestServiceRecommendEndToEndWithRealEngines(t *testing.T) {
	engines := []Engine{
		NewRandomEngine(fixedFactory(0)),
		NewRuleBasedEngine(newTestLogger()),
		NewScoreBasedEngine(fixedFactory(0), newTestLogger()),
		NewLLMDelegateEngine(LLMConfig{}, nil, NewRuleBasedEngine(newTestLogger()), nil, newTestLogger()),
	}
	wardrobe := fullWardrobe()
	svc := NewService(Config{DefaultStrategy: StrategyRule}, engines, stubProfiles{}, stubWardrobe{wardrobe: wardrobe}, &stubWeather{weather: coolSpringWeather(), found: true}, newTestLogger())

	rule, err := svc.Recommend(context.Background(), Request{UserID: 1, Region: "seoul"})
	require.NoError(t, err)
	require.Equal(t, StrategyRule, rule.Strategy)
	require.Equal(t, []string{"코트", "셔츠", "청바지", "운동화", "비니", "머플러", "반지"}, namesOf(rule.Items))

	llm, err := svc.Recommend(context.Background(), Request{UserID: 1, Region: "seoul", Strategy: StrategyLLM})
	require.NoError(t, err)
	require.Equal(t, idsOf(rule.Items), idsOf(llm.Items))
}

func TestServiceSaveWeather(t *testing.T) {
	store := &stubWeather{}
	svc := newServiceUnderTest(stubProfiles{}, stubWardrobe{}, store)

	require.NoError(t, svc.SaveWeather(context.Background(), " busan ", coolSpringWeather()))
	require.Equal(t, map[string]time.Duration{"busan": time.Hour}, store.saved)

	err := svc.SaveWeather(context.Background(), "", coolSpringWeather())
	require.True(t, apperrors.IsCode(err, "invalid_input"))

	err = svc.SaveWeather(context.Background(), "busan", Weather{TemperatureCurrent: 3})
	require.True(t, apperrors.IsCode(err, "invalid_input"))

	failing := newServiceUnderTest(stubProfiles{}, stubWardrobe{}, &stubWeather{err: errors.New("down")})
	err = failing.SaveWeather(context.Background(), "busan", coolSpringWeather())
	require.True(t, apperrors.IsCode(err, "repository_error"))
}
