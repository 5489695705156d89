// Package nlquery turns plain-language questions into search filters, using
// Gemini when an API key is configured and keyword rules otherwise.
package nlquery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/nonsonwune/counselling_db/nlquery/prompts"
	"github.com/nonsonwune/counselling_db/search"
)

// Generator sends one prompt to a language model and returns its text reply.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator calls the Gemini API, rotating over the configured keys.
type GeminiGenerator struct {
	Keys  *KeyManager
	Model string
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	key := g.Keys.GetNextKey()
	if key == "" {
		return "", errors.New("no usable Gemini API key")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(key))
	if err != nil {
		return "", fmt.Errorf("error initializing Gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.Model)
	model.SetTemperature(0.1)
	model.ResponseMIMEType = "application/json"
	model.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		if isRateLimitError(err) {
			g.Keys.MarkKeyFailed(key)
		}
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no response candidates")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return "", errors.New("response contained no text")
	}
	return b.String(), nil
}

// Engine answers questions against one record set's options.
type Engine struct {
	gen     Generator
	opts    search.Options
	prompts *prompts.PromptBuilder
	logger  *log.Logger
	backoff []time.Duration
}

// NewEngine builds an engine. gen may be nil, in which case only the keyword
// rules are used.
func NewEngine(gen Generator, opts search.Options, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		gen:  gen,
		opts: opts,
		prompts: prompts.NewPromptBuilder(prompts.Vocabulary{
			Years:      opts.Years,
			Quotas:     opts.Quotas,
			Colleges:   opts.Colleges,
			Courses:    opts.Courses,
			Categories: opts.Categories,
		}),
		logger:  logger,
		backoff: []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
	}
}

// NewGeminiEngine wires a GeminiGenerator when keys are available.
func NewGeminiEngine(keys []string, model string, opts search.Options, logger *log.Logger) *Engine {
	var gen Generator
	if km := NewKeyManager(keys); km.Len() > 0 {
		gen = &GeminiGenerator{Keys: km, Model: model}
	}
	return NewEngine(gen, opts, logger)
}

// Ask interprets a question. Model failures fall back to the keyword rules,
// so Ask only fails on an empty question or a cancelled context.
func (e *Engine) Ask(ctx context.Context, question string) (Interpretation, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Interpretation{}, errors.New("empty question")
	}
	if e.gen == nil {
		return ParseQuestion(question, e.opts), nil
	}

	queryCtx, cancel := context.WithTimeout(ctx, 45*time.Second)
	defer cancel()

	interp, err := e.askModel(queryCtx, question)
	if err == nil {
		return interp, nil
	}
	if ctx.Err() != nil {
		return Interpretation{}, ctx.Err()
	}
	e.logger.Printf("Gemini could not answer, using keyword rules: %v", err)
	return ParseQuestion(question, e.opts), nil
}

// Explain returns a short hint for a question that produced nothing. The
// model phrases it when available; otherwise a fixed hint is used.
func (e *Engine) Explain(ctx context.Context, question string, cause error) string {
	const fallback = "Try naming a rank range, a year, a quota or a course, e.g. \"NS seats in ENT under rank 30000 in 2024\"."
	if e.gen == nil {
		return fallback
	}
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	text, err := e.gen.Generate(ctx, e.prompts.BuildErrorPrompt(question, cause))
	if err != nil {
		e.logger.Printf("Could not generate a hint: %v", err)
		return fallback
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fallback
	}
	return text
}

func (e *Engine) askModel(ctx context.Context, question string) (Interpretation, error) {
	prompt := e.prompts.BuildFilterPrompt(question)

	var lastErr error
	for i, wait := range e.backoff {
		text, err := e.gen.Generate(ctx, prompt)
		if err == nil {
			var req FilterRequest
			req, err = parseFilterResponse(text)
			if err == nil {
				interp := req.Interpret(e.opts)
				interp.Engine = "gemini"
				return interp, nil
			}
		}
		lastErr = err
		e.logger.Printf("Attempt %d failed: %v", i+1, err)
		select {
		case <-ctx.Done():
			return Interpretation{}, ctx.Err()
		case <-time.After(wait):
		}
	}
	return Interpretation{}, fmt.Errorf("all attempts failed, last error: %w", lastErr)
}

// Helper function to check for rate limit errors
func isRateLimitError(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "rate limit") ||
		strings.Contains(s, "quota exceeded") ||
		strings.Contains(s, "resource exhausted") ||
		strings.Contains(s, "429")
}

// FilterRequest is the JSON object the model replies with.
type FilterRequest struct {
	MinRank    int      `json:"minRank"`
	MaxRank    int      `json:"maxRank"`
	Years      []string `json:"years"`
	Quotas     []string `json:"quotas"`
	Colleges   []string `json:"colleges"`
	Courses    []string `json:"courses"`
	Categories []string `json:"categories"`
	Gender     string   `json:"gender"`
	OnlyPH     bool     `json:"onlyPH"`
	OnlyMIN    bool     `json:"onlyMIN"`
	OnlyMRC    bool     `json:"onlyMRC"`
	OnlyLocal  bool     `json:"onlyLocal"`
	Sort       string   `json:"sort"`
	Desc       bool     `json:"desc"`
}

// parseFilterResponse accepts a bare JSON object or one wrapped in a
// ```json code block.
func parseFilterResponse(text string) (FilterRequest, error) {
	raw := extractJSON(text)
	if raw == "" {
		return FilterRequest{}, errors.New("no JSON object in response")
	}
	var req FilterRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return FilterRequest{}, fmt.Errorf("invalid filter JSON: %w", err)
	}
	return req, nil
}

func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	for _, format := range []string{"```json", "```JSON", "```"} {
		if strings.HasPrefix(text, format) {
			text = strings.TrimPrefix(text, format)
			if idx := strings.LastIndex(text, "```"); idx != -1 {
				text = text[:idx]
			}
			break
		}
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return ""
	}
	return text[start : end+1]
}

// Interpret converts the request into a search.Spec over opts. Values that are not
// among the options are dropped; a group left empty keeps its default.
func (r FilterRequest) Interpret(opts search.Options) Interpretation {
	spec := search.DefaultSpec(opts)
	var notes []string

	pick := func(label string, want, available []string, dst *[]string) {
		got := intersect(want, available)
		if len(got) > 0 {
			*dst = got
			notes = append(notes, label+" "+strings.Join(got, ", "))
		}
	}
	pick("years", r.Years, opts.Years, &spec.Years)
	pick("quotas", r.Quotas, opts.Quotas, &spec.Quotas)
	pick("colleges", r.Colleges, opts.Colleges, &spec.Colleges)
	pick("courses", r.Courses, opts.Courses, &spec.Courses)
	pick("categories", r.Categories, opts.Categories, &spec.Categories)

	if r.MinRank > 0 {
		spec.MinRank = r.MinRank
	}
	if r.MaxRank > 0 {
		spec.MaxRank = r.MaxRank
	}
	if spec.MinRank > 0 || spec.MaxRank > 0 {
		notes = append(notes, "ranks "+rangeText(spec.MinRank, spec.MaxRank))
	}

	switch strings.ToUpper(strings.TrimSpace(r.Gender)) {
	case "F", "FEMALE":
		spec.Male, spec.Female = false, true
		notes = append(notes, "female seats")
	case "M", "MALE":
		spec.Male, spec.Female = true, false
		notes = append(notes, "male seats")
	}

	spec.Only = search.Only{PH: r.OnlyPH, MIN: r.OnlyMIN, MRC: r.OnlyMRC, Local: r.OnlyLocal}
	if sk, err := search.ParseSortKey(r.Sort); err == nil {
		spec.Sort = sk
	}
	spec.Desc = r.Desc

	return Interpretation{Spec: spec, Notes: notes}
}

// intersect keeps the wanted values found in available, matching case
// insensitively and returning the available spelling.
func intersect(want, available []string) []string {
	index := make(map[string]string, len(available))
	for _, a := range available {
		index[strings.ToLower(strings.TrimSpace(a))] = a
	}
	var out []string
	for _, w := range want {
		if a, ok := index[strings.ToLower(strings.TrimSpace(w))]; ok && !contains(out, a) {
			out = append(out, a)
		}
	}
	return out
}
