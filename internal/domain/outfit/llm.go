package outfit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/ootd-recommender/internal/infra/llm/chatgpt"
	"github.com/yanqian/ootd-recommender/pkg/metrics"
	"github.com/yanqian/ootd-recommender/pkg/util"
)

const (
	defaultLLMTimeout     = 12 * time.Second
	defaultMaxCandidates  = 100
	defaultMaxPromptItems = 50
	defaultMaxAttributes  = 6
	maxAccessoryPicks     = 2
	finalFallbackSize     = 3
)

// ChatClient is the chat-completion capability the delegate strategy needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// TokenCounter estimates prompt size; it is optional.
type TokenCounter interface {
	Count(text string) int
}

// LLMConfig wires runtime knobs for the delegate strategy.
type LLMConfig struct {
	Model          string
	Temperature    float32
	Prompt         string
	Timeout        time.Duration
	MaxCandidates  int
	MaxPromptItems int
	MaxAttributes  int
}

func (c LLMConfig) withDefaults() LLMConfig {
	if c.Timeout <= 0 {
		c.Timeout = defaultLLMTimeout
	}
	if c.MaxCandidates <= 0 {
		c.MaxCandidates = defaultMaxCandidates
	}
	if c.MaxPromptItems <= 0 {
		c.MaxPromptItems = defaultMaxPromptItems
	}
	if c.MaxAttributes <= 0 {
		c.MaxAttributes = defaultMaxAttributes
	}
	return c
}

// LLMDelegateEngine asks a chat model to compose the outfit and falls back to
// another engine whenever the model yields nothing usable.
type LLMDelegateEngine struct {
	cfg      LLMConfig
	client   ChatClient
	fallback Engine
	tokens   TokenCounter
	logger   *slog.Logger
}

// NewLLMDelegateEngine builds the delegate strategy. fallback is normally the rule based engine.
func NewLLMDelegateEngine(cfg LLMConfig, client ChatClient, fallback Engine, tokens TokenCounter, logger *slog.Logger) *LLMDelegateEngine {
	return &LLMDelegateEngine{
		cfg:      cfg.withDefaults(),
		client:   client,
		fallback: fallback,
		tokens:   tokens,
		logger:   logger.With("component", "outfit.llm"),
	}
}

func (e *LLMDelegateEngine) Strategy() Strategy { return StrategyLLM }

// Recommend never returns an error; every failure degrades to a fallback outfit.
func (e *LLMDelegateEngine) Recommend(ctx context.Context, user UserProfile, weather Weather, wardrobe Wardrobe) ([]Garment, error) {
	picks, reason := e.delegate(ctx, user, weather, wardrobe)
	if len(picks) > 0 {
		return picks, nil
	}
	metrics.LLMFallbacks.WithLabelValues(reason).Inc()
	e.logger.Warn("llm recommendation empty, using fallback", "reason", reason, "wardrobe", len(wardrobe))

	if e.fallback != nil {
		out, err := e.fallback.Recommend(ctx, user, weather, wardrobe)
		if err == nil {
			return out, nil
		}
		e.logger.Warn("fallback strategy failed, returning first wardrobe items", "error", err)
	}
	return firstItems(wardrobe, finalFallbackSize), nil
}

func (e *LLMDelegateEngine) delegate(ctx context.Context, user UserProfile, weather Weather, wardrobe Wardrobe) ([]Garment, string) {
	if len(wardrobe) == 0 {
		return nil, "empty_wardrobe"
	}
	if e.client == nil {
		return nil, "no_client"
	}
	if err := ValidateInputs(user, weather); err != nil {
		return nil, "invalid_input"
	}

	cond := DeriveConditions(user, weather)
	candidates := capCandidates(wardrobe, e.cfg.MaxCandidates, e.cfg.MaxAttributes)
	userPrompt := e.buildUserPrompt(user, weather, cond, candidates)
	systemPrompt := e.buildSystemPrompt()
	if e.tokens != nil {
		promptTokens := e.tokens.Count(systemPrompt) + e.tokens.Count(userPrompt)
		metrics.LLMPromptTokens.Observe(float64(promptTokens))
		e.logger.Debug("llm prompt prepared", "prompt_tokens", promptTokens, "candidates", len(candidates))
	}

	content, err := e.complete(ctx, chatgpt.ChatCompletionRequest{
		Model: e.cfg.Model,
		Messages: []chatgpt.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature:    e.cfg.Temperature,
		ResponseFormat: &chatgpt.ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			e.logger.Warn("llm request timed out", "timeout", e.cfg.Timeout)
			return nil, "timeout"
		}
		e.logger.Warn("llm request failed", "error", err)
		return nil, "transport"
	}

	reply, err := parseLLMReply(content)
	if err != nil {
		e.logger.Warn("llm response malformed", "error", err)
		return nil, "malformed"
	}
	if reply.Skipped > 0 {
		e.logger.Warn("llm picks with unreadable score skipped", "skipped", reply.Skipped)
	}
	picks := resolvePicks(reply, wardrobe)
	if len(picks) == 0 {
		return nil, "no_valid_picks"
	}
	e.logger.Info("llm recommendation accepted", "picks", len(picks), "reasoning", reply.Reasoning)
	return picks, ""
}

// complete issues the single chat call on its own goroutine and abandons it once the deadline passes.
func (e *LLMDelegateEngine) complete(ctx context.Context, req chatgpt.ChatCompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	type result struct {
		content string
		err     error
	}
	done := make(chan result, 1)
	start := time.Now()
	go func() {
		resp, err := e.client.CreateChatCompletion(ctx, req)
		if err != nil {
			done <- result{err: err}
			return
		}
		if len(resp.Choices) == 0 {
			done <- result{err: errors.New("chatgpt returned no choices")}
			return
		}
		done <- result{content: resp.Choices[0].Message.Content}
	}()

	select {
	case <-ctx.Done():
		metrics.LLMRequestDuration.Observe(time.Since(start).Seconds())
		return "", ctx.Err()
	case r := <-done:
		metrics.LLMRequestDuration.Observe(time.Since(start).Seconds())
		return r.content, r.err
	}
}

func (e *LLMDelegateEngine) buildSystemPrompt() string {
	base := strings.TrimSpace(e.cfg.Prompt)
	if base == "" {
		base = "You are a personal stylist choosing today's outfit from the user's own wardrobe."
	}
	rules := []string{
		"Only use ids from the supplied wardrobe list; never invent ids.",
		"Pick one TOP, one BOTTOM and one SHOES when the wardrobe has them. A DRESS may replace TOP and BOTTOM.",
		"Add zero to two ACCESSORY items only when they suit the outfit.",
		"Add exactly one OUTER only when outerNeeded is true and an OUTER exists.",
		"When precipitation probability is 50 or more with rain or snow, avoid suede and leather.",
		"Never pick two items of the same category, except up to two ACCESSORY items.",
	}
	var b strings.Builder
	b.WriteString(base)
	b.WriteString("\nHard constraints:\n")
	for i, rule := range rules {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rule)
	}
	b.WriteString(`Respond ONLY with one minified JSON object of this shape: {"picks":[{"id":string,"score":number,"reason":string}],"reasoning":string}. score is 0-100. Never return plain text or other fields.`)
	return b.String()
}

func (e *LLMDelegateEngine) buildUserPrompt(user UserProfile, weather Weather, cond Conditions, candidates []Garment) string {
	var b strings.Builder
	b.WriteString("Weather:\n")
	fmt.Fprintf(&b, "- forecastAt: %s\n", weather.Instant().In(util.Seoul()).Format(time.RFC3339))
	fmt.Fprintf(&b, "- temperatureCurrent: %.1f\n", weather.TemperatureCurrent)
	fmt.Fprintf(&b, "- temperatureMin: %.1f\n", weather.NightTemperature())
	fmt.Fprintf(&b, "- humidity: %.0f\n", weather.HumidityCurrent)
	if weather.WindSpeed != nil {
		fmt.Fprintf(&b, "- windSpeed: %.1f m/s\n", *weather.WindSpeed)
	} else if weather.WindSpeedWord != "" {
		fmt.Fprintf(&b, "- windSpeed: %s\n", weather.WindSpeedWord)
	}
	if weather.SkyStatus != "" {
		fmt.Fprintf(&b, "- skyStatus: %s\n", weather.SkyStatus)
	}
	fmt.Fprintf(&b, "- precipitationType: %s\n", firstNonEmpty(string(weather.PrecipitationType), string(PrecipitationNone)))
	fmt.Fprintf(&b, "- precipitationProbability: %.0f\n", weather.PrecipitationProbability)
	fmt.Fprintf(&b, "- feelsLikeDay: %.1f\n- feelsLikeNight: %.1f\n- season: %s\n- outerNeeded: %t\n",
		cond.DayPersonal, cond.NightPersonal, cond.Season, cond.OuterNeeded)

	b.WriteString("User:\n")
	fmt.Fprintf(&b, "- temperatureSensitivity: %d (3 is neutral)\n", user.TemperatureSensitivity)
	if user.Gender != "" {
		fmt.Fprintf(&b, "- gender: %s\n", user.Gender)
	}

	b.WriteString("Wardrobe:\n")
	for i, g := range candidates {
		if i >= e.cfg.MaxPromptItems {
			break
		}
		values := make([]string, 0, len(g.Attributes))
		for _, attr := range g.Attributes {
			if v := strings.TrimSpace(attr.Value); v != "" {
				values = append(values, v)
			}
		}
		fmt.Fprintf(&b, "- [%s] %s / %s / %s\n", g.ID, g.Name, g.Category, strings.Join(values, ", "))
	}
	return b.String()
}

func capCandidates(wardrobe Wardrobe, maxItems, maxAttrs int) []Garment {
	n := min(len(wardrobe), maxItems)
	out := make([]Garment, 0, n)
	for _, g := range wardrobe[:n] {
		attrs := g.Attributes
		if len(attrs) > maxAttrs {
			attrs = attrs[:maxAttrs]
		}
		g.Attributes = append([]Attribute(nil), attrs...)
		out = append(out, g)
	}
	return out
}

func firstItems(wardrobe Wardrobe, n int) []Garment {
	n = min(len(wardrobe), n)
	out := make([]Garment, n)
	copy(out, wardrobe[:n])
	return out
}

type llmPick struct {
	ID     string
	Score  float64
	Reason string
}

type llmReply struct {
	Picks     []llmPick
	Reasoning string
	Skipped   int
}

func parseLLMReply(raw string) (llmReply, error) {
	sanitized := strings.TrimSpace(raw)
	sanitized = strings.TrimPrefix(sanitized, "```json")
	sanitized = strings.TrimSuffix(sanitized, "```")
	sanitized = strings.Trim(sanitized, "`")
	sanitized = strings.TrimSpace(strings.TrimPrefix(sanitized, "json"))
	if sanitized == "" {
		return llmReply{}, errors.New("empty response")
	}

	var wire struct {
		Picks []struct {
			ID     string          `json:"id"`
			Score  json.RawMessage `json:"score"`
			Reason string          `json:"reason"`
		} `json:"picks"`
		Reasoning string `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(sanitized), &wire); err != nil {
		return llmReply{}, err
	}

	reply := llmReply{Reasoning: strings.TrimSpace(wire.Reasoning)}
	for _, p := range wire.Picks {
		score, err := coerceScore(p.Score)
		if err != nil {
			reply.Skipped++
			continue
		}
		reply.Picks = append(reply.Picks, llmPick{
			ID:     strings.TrimSpace(p.ID),
			Score:  score,
			Reason: strings.TrimSpace(p.Reason),
		})
	}
	return reply, nil
}

func coerceScore(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		return strconv.ParseFloat(strings.TrimSpace(s), 64)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, err
	}
	return f, nil
}

type rankedGarment struct {
	garment Garment
	score   float64
}

// resolvePicks keeps wardrobe ids only, ranks them by normalised score and enforces
// one garment per slot (two for accessories). TOP and DRESS share the primary slot.
func resolvePicks(reply llmReply, wardrobe Wardrobe) []Garment {
	seen := make(map[uuid.UUID]struct{}, len(reply.Picks))
	ranked := make([]rankedGarment, 0, len(reply.Picks))
	for _, p := range reply.Picks {
		id, err := uuid.Parse(p.ID)
		if err != nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		g, ok := wardrobe.Find(id)
		if !ok {
			continue
		}
		seen[id] = struct{}{}
		ranked = append(ranked, rankedGarment{garment: g, score: normalizeScore(p.Score)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	perSlot := make(map[Category]int)
	out := make([]Garment, 0, len(ranked))
	for _, r := range ranked {
		limit := 1
		if r.garment.Category == CategoryAccessory {
			limit = maxAccessoryPicks
		}
		slot := slotOf(r.garment.Category)
		if perSlot[slot] >= limit {
			continue
		}
		perSlot[slot]++
		out = append(out, r.garment)
	}
	return out
}

func slotOf(category Category) Category {
	if category == CategoryDress {
		return CategoryTop
	}
	return category
}

func normalizeScore(score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	return math.Max(0, math.Min(100, score)) / 100
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

var _ Engine = (*LLMDelegateEngine)(nil)
