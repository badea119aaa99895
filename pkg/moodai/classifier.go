package moodai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"aura-be/pkg/llm"
	"aura-be/pkg/mood"
)

var (
	// ErrUnavailable means no answer could be obtained: both endpoints failed
	// or the client is not configured.
	ErrUnavailable = errors.New("mood classification unavailable")
	ErrEmptyInput  = errors.New("text is required")
)

type Source string

const (
	SourcePrimary  Source = "primary"
	SourceFallback Source = "fallback"
)

// State is a step of the primary -> fallback sequence.
type State int

const (
	NotStarted State = iota
	PrimaryInFlight
	PrimaryFailed
	FallbackInFlight
	Succeeded
	BothFailed
)

func (s State) String() string {
	switch s {
	case PrimaryInFlight:
		return "primary_in_flight"
	case PrimaryFailed:
		return "primary_failed"
	case FallbackInFlight:
		return "fallback_in_flight"
	case Succeeded:
		return "succeeded"
	case BothFailed:
		return "both_failed"
	default:
		return "not_started"
	}
}

type Result struct {
	Mood   mood.Label `json:"mood"`
	Source Source     `json:"source"`
	Raw    string     `json:"raw"`
}

type ImageResult struct {
	Mood       mood.Label `json:"mood"`
	Confidence float64    `json:"confidence"`
	Note       string     `json:"note"`
	Supported  bool       `json:"supported"`
}

type VideoResult struct {
	Message   string `json:"message"`
	Supported bool   `json:"supported"`
}

// Classifier maps user content onto a mood label.
type Classifier interface {
	ClassifyText(ctx context.Context, text string) (Result, error)
	ClassifyImage(ctx context.Context, image []byte) (ImageResult, error)
	ClassifyVideo(ctx context.Context) (VideoResult, error)
}

// Observer receives the client's progress. Any method may be a no-op.
type Observer interface {
	Transition(from, to State)
	Attempt(source Source, took time.Duration, err error)
	Classified(text string, label mood.Label, source Source, raw string)
	Unavailable(primaryErr, fallbackErr error)
	Misconfigured()
}

type Config struct {
	Primary  llm.LLMProvider
	Fallback llm.LLMProvider
	Observer Observer

	// Configured is false when no API key is present; calls then fail
	// without touching the network.
	Configured bool

	// Timeout bounds each upstream call. Zero means the caller's ctx only.
	Timeout time.Duration
}

type client struct {
	primary    llm.LLMProvider
	fallback   llm.LLMProvider
	configured bool
	timeout    time.Duration
	obs        Observer
}

func New(cfg Config) Classifier {
	obs := cfg.Observer
	if obs == nil {
		obs = NopObserver{}
	}
	return &client{
		primary:    cfg.Primary,
		fallback:   cfg.Fallback,
		configured: cfg.Configured && cfg.Primary != nil && cfg.Fallback != nil,
		timeout:    cfg.Timeout,
		obs:        obs,
	}
}

// Prompt builds the classification instruction with the text embedded verbatim.
func Prompt(text string) string {
	return fmt.Sprintf(`Classify the dominant mood of the following user text into exactly ONE of: %s.
Return ONLY the lowercase label (no punctuation, no explanation).
Text: """%s"""`, strings.Join(mood.Names(), ", "), text)
}

func (c *client) ClassifyText(ctx context.Context, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrEmptyInput
	}
	if !c.configured {
		c.obs.Misconfigured()
		return Result{}, fmt.Errorf("%w: api key missing", ErrUnavailable)
	}

	prompt := Prompt(text)
	state := NotStarted
	move := func(to State) {
		c.obs.Transition(state, to)
		state = to
	}

	// 1. Primary
	move(PrimaryInFlight)
	answer, primaryErr := c.call(ctx, SourcePrimary, c.primary, prompt)
	if primaryErr == nil {
		move(Succeeded)
		return c.finish(text, answer, SourcePrimary), nil
	}
	move(PrimaryFailed)

	// A cancelled caller gets no fallback attempt.
	if err := ctx.Err(); err != nil {
		move(BothFailed)
		c.obs.Unavailable(primaryErr, err)
		return Result{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	// 2. Fallback, exactly once
	move(FallbackInFlight)
	answer, fallbackErr := c.call(ctx, SourceFallback, c.fallback, prompt,
		llm.WithTemperature(0), llm.WithMaxTokens(16))
	if fallbackErr == nil {
		move(Succeeded)
		return c.finish(text, answer, SourceFallback), nil
	}

	move(BothFailed)
	c.obs.Unavailable(primaryErr, fallbackErr)
	return Result{}, fmt.Errorf("%w: primary: %v; fallback: %v", ErrUnavailable, primaryErr, fallbackErr)
}

func (c *client) call(ctx context.Context, source Source, p llm.LLMProvider, prompt string, opts ...llm.Option) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	start := time.Now()
	answer, err := p.Generate(ctx, prompt, opts...)
	c.obs.Attempt(source, time.Since(start), err)
	return answer, err
}

func (c *client) finish(text, answer string, source Source) Result {
	label := mood.ExtractLabel(answer)
	c.obs.Classified(text, label, source, answer)
	return Result{Mood: label, Source: source, Raw: answer}
}

func (c *client) ClassifyImage(_ context.Context, _ []byte) (ImageResult, error) {
	return ImageResult{
		Mood:       mood.Neutral,
		Confidence: 0.3,
		Note:       "Vision analysis not implemented",
		Supported:  false,
	}, nil
}

func (c *client) ClassifyVideo(_ context.Context) (VideoResult, error) {
	return VideoResult{Message: "Video mood analysis not implemented", Supported: false}, nil
}

// Snippet returns at most n runes of s, for logs.
func Snippet(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

type NopObserver struct{}

func (NopObserver) Transition(State, State) {}
func (NopObserver) Attempt(Source, time.Duration, error) {}
func (NopObserver) Classified(string, mood.Label, Source, string) {}
func (NopObserver) Unavailable(error, error) {}
func (NopObserver) Misconfigured() {}
