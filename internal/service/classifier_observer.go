package service

import (
	"time"

	"aura-be/internal/metrics"
	"aura-be/internal/pkg/logger"
	"aura-be/pkg/mood"
	"aura-be/pkg/moodai"
)

// classifierObserver feeds classifier progress into metrics and logs.
// Upstream errors are logged here and never reach the caller.
type classifierObserver struct {
	log     logger.ILogger
	verbose bool
}

func NewClassifierObserver(log logger.ILogger, verbose bool) moodai.Observer {
	return &classifierObserver{log: log, verbose: verbose}
}

func (o *classifierObserver) Transition(from, to moodai.State) {
	if o.verbose {
		o.log.Debug("MOOD", "Classifier state", map[string]interface{}{"from": from.String(), "to": to.String()})
	}
}

func (o *classifierObserver) Attempt(source moodai.Source, took time.Duration, err error) {
	metrics.RecordClassificationAttempt(string(source), took, err)
	if err != nil {
		o.log.Warn("MOOD", "Classification attempt failed", map[string]interface{}{
			"endpoint": source,
			"took_ms":  took.Milliseconds(),
			"error":    err.Error(),
		})
	}
}

func (o *classifierObserver) Classified(text string, label mood.Label, source moodai.Source, raw string) {
	if !o.verbose {
		return
	}
	o.log.Debug("MOOD", "Text classified", map[string]interface{}{
		"input":  moodai.Snippet(text, 60),
		"label":  label,
		"source": source,
		"raw":    moodai.Snippet(raw, 60),
	})
}

func (o *classifierObserver) Unavailable(primaryErr, fallbackErr error) {
	details := map[string]interface{}{}
	if primaryErr != nil {
		details["primary_error"] = primaryErr.Error()
	}
	if fallbackErr != nil {
		details["fallback_error"] = fallbackErr.Error()
	}
	o.log.Error("MOOD", "Both classification endpoints failed", details)
}

func (o *classifierObserver) Misconfigured() {
	o.log.Error("MOOD", "Classification API key missing, refusing to call upstream", nil)
}
