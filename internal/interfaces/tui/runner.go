package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sngm3741/affiliate-intake/api/internal/intake/domain"
	"github.com/sngm3741/affiliate-intake/api/internal/intake/wizard"
)

const (
	backLabel     = "« Back"
	continueLabel = "Continue"
	submitLabel   = "Submit application"
	backInput     = "<"
	countryPage   = 15
)

// Runner drives a wizard through a PromptDriver, one step per loop iteration.
type Runner struct {
	wizard *wizard.Wizard
	driver PromptDriver
}

// NewRunner binds a wizard to a prompt driver.
func NewRunner(w *wizard.Wizard, driver PromptDriver) *Runner {
	return &Runner{wizard: w, driver: driver}
}

// Run prompts until the application is accepted, the user gives up after a failure, or input is aborted.
func (r *Runner) Run(ctx context.Context) (wizard.Result, error) {
	for {
		if err := ctx.Err(); err != nil {
			return wizard.Result{}, err
		}

		step := r.wizard.Step()
		if err := r.header(ctx, step); err != nil {
			return wizard.Result{}, err
		}

		var err error
		switch {
		case step.Kind == domain.KindConfirmation:
			result, done, confirmErr := r.confirm(ctx)
			if confirmErr != nil || done {
				return result, confirmErr
			}
		case step.ReadOnly:
			err = r.showReadOnly(ctx, step)
		case step.Kind == domain.KindSelect:
			err = r.promptSelect(ctx, step)
		case step.Kind == domain.KindComposite:
			err = r.promptComposite(ctx, step)
		default:
			err = r.promptInput(ctx, step)
		}
		if err != nil {
			return wizard.Result{}, err
		}
	}
}

func (r *Runner) header(ctx context.Context, step domain.Step) error {
	line := fmt.Sprintf("\nStep %d of %d: %s", r.wizard.CurrentStep(), r.wizard.TotalSteps(), step.Title)
	if step.Description != "" {
		line += "\n" + step.Description
	}
	return r.driver.Info(ctx, line)
}

func (r *Runner) canGoBack() bool {
	return r.wizard.CurrentStep() > 1
}

func (r *Runner) promptInput(ctx context.Context, step domain.Step) error {
	help := step.Placeholder
	if r.canGoBack() {
		help = strings.TrimSpace(help + " (enter " + backInput + " to go back)")
	}
	value, err := r.driver.Input(ctx, InputConfig{
		Message: step.Name + ":",
		Default: r.wizard.Answers().Get(step.Field),
		Help:    help,
	})
	if err != nil {
		return err
	}
	if strings.TrimSpace(value) == backInput && r.canGoBack() {
		r.wizard.Retreat()
		return nil
	}
	if err := r.wizard.UpdateField(step.Field, value); err != nil {
		return err
	}
	return r.advance(ctx, step)
}

// chooseOption returns the chosen option value, or back=true when the back entry was picked.
func (r *Runner) chooseOption(ctx context.Context, step domain.Step, message string) (value string, back bool, err error) {
	labels := make([]string, 0, len(step.Options)+1)
	current := r.wizard.Answers().Get(step.Field)
	defaultIndex := -1
	for i, opt := range step.Options {
		labels = append(labels, opt.Label)
		if opt.Value == current {
			defaultIndex = i
		}
	}
	if r.canGoBack() {
		labels = append(labels, backLabel)
	}

	cfg := SelectConfig{
		Message:      message,
		Options:      labels,
		DefaultIndex: defaultIndex,
		Help:         step.Placeholder,
	}
	if step.Field == domain.FieldCountry {
		cfg.PageSize = countryPage
	}

	idx, err := r.driver.Select(ctx, cfg)
	if err != nil {
		return "", false, err
	}
	switch {
	case idx >= 0 && idx < len(step.Options):
		return step.Options[idx].Value, false, nil
	case idx == len(step.Options) && r.canGoBack():
		return "", true, nil
	default:
		return "", false, nil
	}
}

func (r *Runner) promptSelect(ctx context.Context, step domain.Step) error {
	value, back, err := r.chooseOption(ctx, step, step.Name+":")
	if err != nil {
		return err
	}
	if back {
		r.wizard.Retreat()
		return nil
	}
	if value != "" {
		if err := r.wizard.UpdateField(step.Field, value); err != nil {
			return err
		}
	}
	return r.advance(ctx, step)
}

func (r *Runner) promptComposite(ctx context.Context, step domain.Step) error {
	platform, back, err := r.chooseOption(ctx, step, step.Name+":")
	if err != nil {
		return err
	}
	if back {
		r.wizard.Retreat()
		return nil
	}
	if platform != "" {
		if err := r.wizard.UpdateField(step.Field, platform); err != nil {
			return err
		}
	}
	if r.wizard.Answers().Get(step.Field) == "" {
		return r.advance(ctx, step)
	}

	link, err := r.driver.Input(ctx, InputConfig{
		Message: step.OptionLabel(r.wizard.Answers().Get(step.Field)) + " profile link:",
		Default: r.wizard.Answers().Get(step.LinkField),
		Help:    strings.TrimSpace(step.Placeholder + " (enter " + backInput + " to pick another platform)"),
	})
	if err != nil {
		return err
	}
	if strings.TrimSpace(link) == backInput {
		return nil
	}
	if err := r.wizard.UpdateField(step.LinkField, link); err != nil {
		return err
	}
	return r.advance(ctx, step)
}

func (r *Runner) showReadOnly(ctx context.Context, step domain.Step) error {
	value := r.wizard.Answers().Get(step.Field)
	if value == "" {
		value = "(not determined for the selected country)"
	}
	if err := r.driver.Info(ctx, fmt.Sprintf("%s: %s", step.Name, value)); err != nil {
		return err
	}

	options := []string{continueLabel}
	if r.canGoBack() {
		options = append(options, backLabel)
	}
	idx, err := r.driver.Select(ctx, SelectConfig{Message: "Next:", Options: options})
	if err != nil {
		return err
	}
	if idx == 1 {
		r.wizard.Retreat()
		return nil
	}
	return r.advance(ctx, step)
}

func (r *Runner) advance(ctx context.Context, step domain.Step) error {
	if r.wizard.Advance() {
		return nil
	}
	for _, key := range step.Fields() {
		if msg := r.wizard.Error(key); msg != "" {
			if err := r.driver.Info(ctx, "  ! "+msg); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runner) confirm(ctx context.Context) (wizard.Result, bool, error) {
	if err := r.driver.Info(ctx, r.summary()); err != nil {
		return wizard.Result{}, false, err
	}

	options := []string{submitLabel}
	if r.canGoBack() {
		options = append(options, backLabel)
	}
	idx, err := r.driver.Select(ctx, SelectConfig{Message: "Ready?", Options: options})
	if err != nil {
		return wizard.Result{}, false, err
	}
	if idx == 1 {
		r.wizard.Retreat()
		return wizard.Result{}, false, nil
	}

	result, err := r.wizard.Complete(ctx)
	if errors.Is(err, wizard.ErrSubmitted) {
		return result, true, nil
	}
	if result.Success {
		return result, true, r.driver.Info(ctx, successMessage())
	}

	failure := "Submission failed: " + result.Error
	if result.HelpfulMessage != "" {
		failure += "\n" + result.HelpfulMessage
	}
	if err != nil {
		failure += fmt.Sprintf("\n(%v)", err)
	}
	if err := r.driver.Info(ctx, failure); err != nil {
		return result, false, err
	}

	retry, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Try again?", Default: true})
	if err != nil {
		return result, false, err
	}
	if retry {
		return result, false, nil
	}
	return result, true, ErrNotSubmitted
}

func (r *Runner) summary() string {
	answers := r.wizard.Answers()
	var b strings.Builder
	for _, step := range r.wizard.Steps() {
		switch step.Kind {
		case domain.KindConfirmation:
			continue
		case domain.KindSelect:
			fmt.Fprintf(&b, "  %s: %s\n", step.Name, step.OptionLabel(answers.Get(step.Field)))
		case domain.KindComposite:
			fmt.Fprintf(&b, "  %s: %s %s\n", step.Name, step.OptionLabel(answers.Get(step.Field)), answers.Get(step.LinkField))
		default:
			fmt.Fprintf(&b, "  %s: %s\n", step.Name, answers.Get(step.Field))
		}
	}
	b.WriteString("\n")
	b.WriteString(notes())
	return b.String()
}

func successMessage() string {
	return "Application submitted. Thank you!\n" + notes()
}

func notes() string {
	var b strings.Builder
	for _, note := range domain.ConfirmationNotes {
		b.WriteString("  • " + note + "\n")
	}
	return b.String()
}
