package wizard

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sngm3741/affiliate-intake/api/internal/intake/domain"
)

var (
	// ErrDerivedField is returned when a caller tries to write a derived field such as region.
	ErrDerivedField = errors.New("wizard: field is derived and cannot be edited")
	// ErrUnknownField is returned for keys no step owns.
	ErrUnknownField = errors.New("wizard: unknown field")
	// ErrSubmitted is returned once the application has been accepted.
	ErrSubmitted = errors.New("wizard: application already submitted")
	// ErrSubmitting is returned while a submission is in flight.
	ErrSubmitting = errors.New("wizard: submission in progress")
	// ErrNotTerminalStep is returned when Complete is called before the last step.
	ErrNotTerminalStep = errors.New("wizard: complete is only available on the last step")
)

// DefaultFailureMessage は構造化エラーが得られなかった送信失敗時に表示する文言。
const DefaultFailureMessage = "Something went wrong while submitting your application. Please try again."

// Submitter delivers the finished application to the submission endpoint.
type Submitter interface {
	Submit(ctx context.Context, app domain.Application) (Result, error)
}

// Result mirrors the submission endpoint response envelope.
type Result struct {
	Success        bool   `json:"success"`
	Response       any    `json:"response,omitempty"`
	Error          string `json:"error,omitempty"`
	HelpfulMessage string `json:"helpfulMessage,omitempty"`
	Details        any    `json:"details,omitempty"`
}

// Wizard はステップ列・回答セット・フィールド単位のエラーを保持するフォームコントローラ。
// 状態はすべてプロセス内に閉じ、送信成功後は編集を受け付けない。
type Wizard struct {
	mu         sync.Mutex
	steps      []domain.Step
	current    int
	answers    domain.Answers
	errors     map[string]string
	submitting bool
	submitted  bool
	submitter  Submitter
}

// Option customises a Wizard.
type Option func(*Wizard)

// WithStartStep starts the wizard at step n (1-based, clamped).
func WithStartStep(n int) Option {
	return func(w *Wizard) {
		w.current = n
	}
}

// New constructs a wizard over steps. It panics when steps is empty.
func New(steps []domain.Step, submitter Submitter, opts ...Option) *Wizard {
	if len(steps) == 0 {
		panic("wizard: New requires at least one step")
	}
	w := &Wizard{
		steps:     append([]domain.Step(nil), steps...),
		current:   1,
		answers:   domain.NewAnswers(steps),
		errors:    map[string]string{},
		submitter: submitter,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.current = clamp(w.current, 1, len(w.steps))
	return w
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// CurrentStep returns the 1-based index of the active step.
func (w *Wizard) CurrentStep() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// TotalSteps returns the number of steps.
func (w *Wizard) TotalSteps() int {
	return len(w.steps)
}

// Step returns the descriptor of the active step.
func (w *Wizard) Step() domain.Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.steps[w.current-1]
}

// Steps returns a copy of the step list.
func (w *Wizard) Steps() []domain.Step {
	return append([]domain.Step(nil), w.steps...)
}

// IsLastStep reports whether the active step is the terminal one.
func (w *Wizard) IsLastStep() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current == len(w.steps)
}

// Answers returns a snapshot of the answer set.
func (w *Wizard) Answers() domain.Answers {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.answers.Clone()
}

// Errors returns a snapshot of the per-field validation messages.
func (w *Wizard) Errors() map[string]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]string, len(w.errors))
	for k, v := range w.errors {
		out[k] = v
	}
	return out
}

// Error returns the validation message recorded for key.
func (w *Wizard) Error(key string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.errors[key]
}

// Submitting reports whether a submission is in flight.
func (w *Wizard) Submitting() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitting
}

// Submitted reports whether the application was accepted.
func (w *Wizard) Submitted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitted
}

// UpdateField は回答を書き込み、そのキーのエラーを消す。
// country は region を同時に更新し、socialPlatform の変更は入力済みリンクを破棄する。
func (w *Wizard) UpdateField(key, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.submitted {
		return ErrSubmitted
	}
	if key == domain.FieldRegion {
		return ErrDerivedField
	}
	if _, ok := w.answers[key]; !ok {
		return ErrUnknownField
	}

	switch key {
	case domain.FieldCountry:
		w.answers[domain.FieldCountry] = value
		w.answers[domain.FieldRegion] = domain.RegionFor(value)
	case domain.FieldSocialPlatform:
		if w.answers[key] != value {
			if _, ok := w.answers[domain.FieldSocialPlatformLink]; ok {
				w.answers[domain.FieldSocialPlatformLink] = ""
				delete(w.errors, domain.FieldSocialPlatformLink)
			}
		}
		w.answers[key] = value
	default:
		w.answers[key] = value
	}

	delete(w.errors, key)
	return nil
}

// IsCurrentStepValid reports whether the active step would pass Advance.
func (w *Wizard) IsCurrentStepValid() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	key, _ := domain.ValidateStep(w.steps[w.current-1], w.answers)
	return key == ""
}

// Advance validates the active step and moves forward when it passes.
// On failure the message is recorded against the failing key and the step does not change.
func (w *Wizard) Advance() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	step := w.steps[w.current-1]
	if step.Kind != domain.KindConfirmation {
		if key, msg := domain.ValidateStep(step, w.answers); key != "" {
			w.errors[key] = msg
			return false
		}
		for _, key := range step.Fields() {
			delete(w.errors, key)
		}
	}

	if w.current < len(w.steps) {
		w.current++
	}
	return true
}

// Retreat moves back one step; no-op on the first step.
func (w *Wizard) Retreat() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current > 1 {
		w.current--
	}
}

// Complete は最終ステップでのみ呼び出せる送信処理。送信中フラグで二重送信を防ぎ、
// 失敗時は回答を保持したまま再試行できる状態に戻す。
func (w *Wizard) Complete(ctx context.Context) (Result, error) {
	w.mu.Lock()
	switch {
	case w.submitted:
		w.mu.Unlock()
		return Result{}, ErrSubmitted
	case w.submitting:
		w.mu.Unlock()
		return Result{}, ErrSubmitting
	case w.current != len(w.steps):
		w.mu.Unlock()
		return Result{}, ErrNotTerminalStep
	}
	w.submitting = true
	app := domain.ApplicationFromAnswers(w.answers)
	w.mu.Unlock()

	result, err := w.submitter.Submit(ctx, app)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false

	if err != nil {
		return Result{Success: false, Error: DefaultFailureMessage}, err
	}
	if !result.Success {
		if strings.TrimSpace(result.Error) == "" {
			result.Error = DefaultFailureMessage
		}
		return result, nil
	}

	w.submitted = true
	return result, nil
}
