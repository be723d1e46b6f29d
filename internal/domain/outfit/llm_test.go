package outfit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/ootd-recommender/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/ootd-recommender/pkg/errors"
	"github.com/yanqian/ootd-recommender/pkg/metrics"
)

type stubChatClient struct {
	respond func(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
	last    chatgpt.ChatCompletionRequest
	calls   int
}

func (s *stubChatClient) CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error) {
	s.calls++
	s.last = req
	return s.respond(ctx, req)
}

func replyWith(content string) func(context.Context, chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error) {
	return func(context.Context, chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error) {
		return chatgpt.ChatCompletionResponse{Choices: []chatgpt.Choice{{Message: chatgpt.Message{Role: "assistant", Content: content}}}}, nil
	}
}

type stubEngine struct {
	out []Garment
	err error
}

func (s stubEngine) Strategy() Strategy { return StrategyRule }

func (s stubEngine) Recommend(context.Context, UserProfile, Weather, Wardrobe) ([]Garment, error) {
	return s.out, s.err
}

type countingTokens struct{ calls int }

func (c *countingTokens) Count(text string) int {
	c.calls++
	return len(strings.Fields(text))
}

func springWeather() Weather {
	return Weather{
		ForecastAt:         seoulTime(time.April, 20),
		TemperatureCurrent: 16,
		TemperatureMin:     float(9),
		HumidityCurrent:    45,
		WindSpeedWord:      "약함",
		PrecipitationType:  PrecipitationNone,
	}
}

func llmWardrobe() Wardrobe {
	return Wardrobe{
		garment("트렌치코트", CategoryOuter, AttrSeason, "봄", AttrThickness, "보통", AttrStyle, "미니멀"),
		garment("셔츠", CategoryTop, AttrSeason, "봄", AttrThickness, "얇음", AttrStyle, "미니멀"),
		garment("니트", CategoryTop, AttrSeason, "겨울", AttrThickness, "두꺼움"),
		garment("슬랙스", CategoryBottom, AttrSeason, "사계절", AttrStyle, "포멀"),
		garment("로퍼", CategoryShoes, AttrSeason, "전체", AttrStyle, "미니멀"),
		garment("시계", CategoryAccessory, AttrStyle, "기본"),
		garment("목걸이", CategoryAccessory, AttrStyle, "미니멀"),
		garment("반지", CategoryAccessory, AttrStyle, "미니멀"),
	}
}

func newLLMEngine(client ChatClient, fallback Engine, cfg LLMConfig) *LLMDelegateEngine {
	return NewLLMDelegateEngine(cfg, client, fallback, nil, newTestLogger())
}

func idsOf(garments []Garment) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(garments))
	for _, g := range garments {
		out = append(out, g.ID)
	}
	return out
}

func TestLLMEngineDropsHallucinatedIDs(t *testing.T) {
	wardrobe := llmWardrobe()
	shirt := wardrobe[1]
	reply := fmt.Sprintf(`{"picks":[{"id":"%s","score":95,"reason":"made up"},{"id":"not-a-uuid","score":90},{"id":"%s","score":80,"reason":"light"}],"reasoning":"spring"}`,
		uuid.New(), shirt.ID)
	client := &stubChatClient{respond: replyWith(reply)}

	got, err := newLLMEngine(client, stubEngine{err: errors.New("unused")}, LLMConfig{}).Recommend(context.Background(), DefaultProfile(1), springWeather(), wardrobe)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{shirt.ID}, idsOf(got))
	for _, g := range got {
		require.True(t, wardrobe.Contains(g.ID))
	}
}

func TestLLMEngineRanksAndLimitsPerCategory(t *testing.T) {
	wardrobe := llmWardrobe()
	outer, shirt, knit, slacks, loafer := wardrobe[0], wardrobe[1], wardrobe[2], wardrobe[3], wardrobe[4]
	watch, necklace, ring := wardrobe[5], wardrobe[6], wardrobe[7]
	reply := "```json\n" + fmt.Sprintf(`{"picks":[
		{"id":"%s","score":40},
		{"id":"%s","score":"90"},
		{"id":"%s","score":150},
		{"id":"%s","score":70},
		{"id":"%s","score":60},
		{"id":"%s","score":55},
		{"id":"%s","score":50},
		{"id":"%s","score":-5},
		{"id":"%s","score":99}
	],"reasoning":"ok"}`, knit.ID, shirt.ID, outer.ID, slacks.ID, watch.ID, necklace.ID, ring.ID, loafer.ID, shirt.ID) + "\n```"
	client := &stubChatClient{respond: replyWith(reply)}

	got, err := newLLMEngine(client, nil, LLMConfig{}).Recommend(context.Background(), DefaultProfile(1), springWeather(), wardrobe)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{outer.ID, shirt.ID, slacks.ID, watch.ID, necklace.ID, loafer.ID}, idsOf(got))
}

func TestLLMEngineTopAndDressShareThePrimarySlot(t *testing.T) {
	wardrobe := llmWardrobe()
	dress := garment("원피스", CategoryDress, AttrSeason, "봄", AttrThickness, "얇음")
	wardrobe = append(wardrobe, dress)
	shirt, slacks := wardrobe[1], wardrobe[3]
	reply := fmt.Sprintf(`{"picks":[{"id":"%s","score":90},{"id":"%s","score":80},{"id":"%s","score":70}]}`,
		dress.ID, shirt.ID, slacks.ID)
	client := &stubChatClient{respond: replyWith(reply)}

	got, err := newLLMEngine(client, nil, LLMConfig{}).Recommend(context.Background(), DefaultProfile(1), springWeather(), wardrobe)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{dress.ID, slacks.ID}, idsOf(got))

	reply = fmt.Sprintf(`{"picks":[{"id":"%s","score":60},{"id":"%s","score":85}]}`, dress.ID, shirt.ID)
	client = &stubChatClient{respond: replyWith(reply)}
	got, err = newLLMEngine(client, nil, LLMConfig{}).Recommend(context.Background(), DefaultProfile(1), springWeather(), wardrobe)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{shirt.ID}, idsOf(got))
}

func TestLLMEngineKeepsPicksBesideUnreadableScores(t *testing.T) {
	wardrobe := llmWardrobe()
	shirt, slacks, loafer := wardrobe[1], wardrobe[3], wardrobe[4]
	reply := fmt.Sprintf(`{"picks":[{"id":"%s","score":"high"},{"id":"%s","score":true},{"id":"%s","score":75}]}`,
		shirt.ID, slacks.ID, loafer.ID)
	client := &stubChatClient{respond: replyWith(reply)}
	fallback := stubEngine{out: []Garment{wardrobe[0]}}

	got, err := newLLMEngine(client, fallback, LLMConfig{}).Recommend(context.Background(), DefaultProfile(1), springWeather(), wardrobe)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{loafer.ID}, idsOf(got))
}

func TestLLMEngineBuildsBoundedPrompt(t *testing.T) {
	wardrobe := llmWardrobe()
	wardrobe[1].Attributes = append(wardrobe[1].Attributes, Attribute{Name: "소재", Value: "린넨"})
	client := &stubChatClient{respond: replyWith(fmt.Sprintf(`{"picks":[{"id":"%s","score":80}]}`, wardrobe[7].ID))}
	tokens := &countingTokens{}
	engine := NewLLMDelegateEngine(LLMConfig{Model: "gpt-4o-mini", MaxPromptItems: 2, MaxAttributes: 3}, client, nil, tokens, newTestLogger())

	got, err := engine.Recommend(context.Background(), UserProfile{UserID: 1, TemperatureSensitivity: 4, Gender: "F"}, springWeather(), wardrobe)
	require.NoError(t, err)
	// the reply may name garments beyond the prompt listing as long as they are in the wardrobe
	require.Equal(t, []uuid.UUID{wardrobe[7].ID}, idsOf(got))

	require.Equal(t, 1, client.calls)
	require.Equal(t, "gpt-4o-mini", client.last.Model)
	require.NotNil(t, client.last.ResponseFormat)
	require.Equal(t, "json_object", client.last.ResponseFormat.Type)
	require.Len(t, client.last.Messages, 2)
	require.Equal(t, 2, tokens.calls)

	system := client.last.Messages[0].Content
	require.Contains(t, system, "never invent ids")
	require.Contains(t, system, `"picks"`)

	user := client.last.Messages[1].Content
	require.Contains(t, user, "- outerNeeded: true")
	require.Contains(t, user, "- season: 봄")
	require.Contains(t, user, "- windSpeed: 약함")
	require.Contains(t, user, "- temperatureSensitivity: 4")
	require.Contains(t, user, fmt.Sprintf("- [%s] 트렌치코트 / OUTER / 봄, 보통, 미니멀\n", wardrobe[0].ID))
	require.Contains(t, user, fmt.Sprintf("- [%s] 셔츠 / TOP / 봄, 얇음, 미니멀\n", wardrobe[1].ID))
	require.NotContains(t, user, "린넨")
	require.NotContains(t, user, wardrobe[2].ID.String())
}

func TestLLMEngineFallsBackToRuleBased(t *testing.T) {
	wardrobe := llmWardrobe()
	rule := NewRuleBasedEngine(newTestLogger())
	want, err := rule.Recommend(context.Background(), DefaultProfile(1), springWeather(), wardrobe)
	require.NoError(t, err)
	require.NotEmpty(t, want)

	assertFallback := func(t *testing.T, client ChatClient) {
		t.Helper()
		got, err := newLLMEngine(client, rule, LLMConfig{}).Recommend(context.Background(), DefaultProfile(1), springWeather(), wardrobe)
		require.NoError(t, err)
		require.Equal(t, idsOf(want), idsOf(got))
	}

	t.Run("malformed", func(t *testing.T) {
		assertFallback(t, &stubChatClient{respond: replyWith("I think you should wear the coat.")})
	})
	t.Run("no picks", func(t *testing.T) {
		assertFallback(t, &stubChatClient{respond: replyWith(`{"picks":[],"reasoning":"nothing fits"}`)})
	})
	t.Run("unknown ids", func(t *testing.T) {
		assertFallback(t, &stubChatClient{respond: replyWith(fmt.Sprintf(`{"picks":[{"id":"%s","score":90}]}`, uuid.New()))})
	})
	t.Run("transport", func(t *testing.T) {
		assertFallback(t, &stubChatClient{respond: func(context.Context, chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error) {
			return chatgpt.ChatCompletionResponse{}, errors.New("connection reset")
		}})
	})
	t.Run("no choices", func(t *testing.T) {
		assertFallback(t, &stubChatClient{respond: func(context.Context, chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error) {
			return chatgpt.ChatCompletionResponse{}, nil
		}})
	})
	t.Run("no client", func(t *testing.T) {
		assertFallback(t, nil)
	})
}

func TestLLMEngineTimesOut(t *testing.T) {
	wardrobe := llmWardrobe()
	fallback := stubEngine{out: wardrobe[3:4]}
	client := &stubChatClient{respond: func(ctx context.Context, _ chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error) {
		<-ctx.Done()
		return chatgpt.ChatCompletionResponse{}, ctx.Err()
	}}

	start := time.Now()
	got, err := newLLMEngine(client, fallback, LLMConfig{Timeout: 20 * time.Millisecond}).Recommend(context.Background(), DefaultProfile(1), springWeather(), wardrobe)
	require.NoError(t, err)
	require.Less(t, time.Since(start), 2*time.Second)
	require.Equal(t, []uuid.UUID{wardrobe[3].ID}, idsOf(got))
}

func TestLLMEngineLastResortIsFirstThreeItems(t *testing.T) {
	wardrobe := llmWardrobe()
	failing := stubEngine{err: apperrors.Wrap("invalid_input", "invalid weather snapshot", nil)}
	before := testutil.ToFloat64(metrics.LLMFallbacks.WithLabelValues("no_client"))

	got, err := newLLMEngine(nil, failing, LLMConfig{}).Recommend(context.Background(), DefaultProfile(1), springWeather(), wardrobe)
	require.NoError(t, err)
	require.Equal(t, idsOf(wardrobe[:3]), idsOf(got))
	require.Equal(t, before+1, testutil.ToFloat64(metrics.LLMFallbacks.WithLabelValues("no_client")))

	short := wardrobe[:2]
	got, err = newLLMEngine(nil, failing, LLMConfig{}).Recommend(context.Background(), DefaultProfile(1), springWeather(), short)
	require.NoError(t, err)
	require.Equal(t, idsOf(short), idsOf(got))
}

func TestLLMEngineEmptyWardrobeNeverCallsModel(t *testing.T) {
	client := &stubChatClient{respond: replyWith(`{"picks":[]}`)}
	got, err := newLLMEngine(client, NewRuleBasedEngine(newTestLogger()), LLMConfig{}).Recommend(context.Background(), DefaultProfile(1), springWeather(), nil)
	require.NoError(t, err)
	require.Empty(t, got)
	require.Zero(t, client.calls)
}

func TestLLMEngineInvalidWeatherSkipsModel(t *testing.T) {
	wardrobe := llmWardrobe()
	client := &stubChatClient{respond: replyWith(`{"picks":[]}`)}
	bad := springWeather()
	bad.PrecipitationProbability = 140

	got, err := newLLMEngine(client, NewRuleBasedEngine(newTestLogger()), LLMConfig{}).Recommend(context.Background(), DefaultProfile(1), bad, wardrobe)
	require.NoError(t, err)
	require.Equal(t, idsOf(wardrobe[:3]), idsOf(got))
	require.Zero(t, client.calls)
}

func TestParseLLMReply(t *testing.T) {
	reply, err := parseLLMReply("```json\n{\"picks\":[{\"id\":\" abc \",\"score\":\"72.5\",\"reason\":\"r\"},{\"id\":\"def\"}],\"reasoning\":\" fine \"}\n```")
	require.NoError(t, err)
	require.Equal(t, "fine", reply.Reasoning)
	require.Equal(t, []llmPick{{ID: "abc", Score: 72.5, Reason: "r"}, {ID: "def"}}, reply.Picks)

	_, err = parseLLMReply("   ")
	require.Error(t, err)
	_, err = parseLLMReply(`{"picks":`)
	require.Error(t, err)

	reply, err = parseLLMReply(`{"picks":[{"id":"x","score":"high"},{"id":"y","score":true},{"id":"z","score":12}]}`)
	require.NoError(t, err)
	require.Equal(t, 2, reply.Skipped)
	require.Equal(t, []llmPick{{ID: "z", Score: 12}}, reply.Picks)
}

func TestNormalizeScore(t *testing.T) {
	require.Equal(t, 1.0, normalizeScore(150))
	require.Equal(t, 0.0, normalizeScore(-3))
	require.Equal(t, 0.42, normalizeScore(42))
}
