// Package analysis asks a hosted language model to comment on attendance
// risk. Failures never reach the caller as errors: they become fixed
// user-facing messages.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"attendance-service/pkg/sl"
)

const (
	ConfigMissingMessage = "Analysis is not configured: the institutional access key is missing."
	AnalyzeFailedMessage = "Sorry, the analysis assistant could not be reached. Check the connection or try again later."
	AskFailedMessage     = "The question could not be processed right now."

	Signature = "Regards: AI Assistant for Administrative Attendance Control"

	DefaultTimeout = 30 * time.Second
)

// ErrNotConfigured means no API key was provided.
var ErrNotConfigured = errors.New("analysis credential is missing")

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message of a chat history.
type Turn struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// Generator is the text-generation backend.
type Generator interface {
	Generate(ctx context.Context, system string, history []Turn, prompt string) (string, error)
}

type Analyst struct {
	log     *slog.Logger
	gen     Generator
	timeout time.Duration
}

// New returns an Analyst. A nil gen makes every request answer with
// ConfigMissingMessage.
func New(log *slog.Logger, gen Generator, timeout time.Duration) *Analyst {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Analyst{log: log, gen: gen, timeout: timeout}
}

func (a *Analyst) Configured() bool {
	return a.gen != nil
}

func analyzeInstruction() string {
	return "You are the school's AI assistant. Analyse student dropout risk from attendance and suggest " +
		"administrative follow-up protocols under current education regulations. Be professional, direct and " +
		"executive. End every answer with the exact signature: '" + Signature + "'."
}

func askInstruction(summary []byte) string {
	return "You are the school's AI assistant. You have access to the current enrolment and attendance summary: " +
		string(summary) + ". Answer questions about students, justify protocols and help staff with " +
		"administrative work. Keep a formal institutional tone. End every answer with the exact signature: '" +
		Signature + "'."
}

// Analyze returns a risk analysis of the serialised attendance summary.
func (a *Analyst) Analyze(ctx context.Context, summary []byte) string {
	const op = "analysis.Analyst.Analyze"

	if a.gen == nil {
		return ConfigMissingMessage
	}

	prompt := fmt.Sprintf("Analyse this attendance and risk summary: %s", summary)

	text, err := a.generate(ctx, analyzeInstruction(), nil, prompt)
	if err != nil {
		a.log.Error("analysis failed", slog.String("op", op), sl.Err(err))
		return AnalyzeFailedMessage
	}

	return text
}

// Ask answers question with the summary and prior turns as context.
func (a *Analyst) Ask(ctx context.Context, question string, summary []byte, history []Turn) string {
	const op = "analysis.Analyst.Ask"

	if a.gen == nil {
		return ConfigMissingMessage
	}

	text, err := a.generate(ctx, askInstruction(summary), history, question)
	if err != nil {
		a.log.Error("question failed", slog.String("op", op), sl.Err(err))
		return AskFailedMessage
	}

	return text
}

func (a *Analyst) generate(ctx context.Context, system string, history []Turn, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}

	done := make(chan result, 1)
	go func() {
		text, err := a.gen.Generate(ctx, system, history, prompt)
		done <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		if r.err != nil {
			return "", r.err
		}
		if r.text == "" {
			return "", errors.New("empty response")
		}
		return r.text, nil
	}
}
