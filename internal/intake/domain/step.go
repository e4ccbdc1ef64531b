package domain

// StepKind はウィザードの 1 ステップが扱う入力の種類を表すタグ。
// 描画と検証はこの値だけを見て分岐する。
type StepKind string

const (
	KindText         StepKind = "text"
	KindEmail        StepKind = "email"
	KindSelect       StepKind = "select"
	KindURL          StepKind = "url"
	KindComposite    StepKind = "composite"
	KindConfirmation StepKind = "confirmation"
)

// Option is a single (value, label) pair offered by a select step.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Step describes one screen of the wizard. Steps are built once per variant and never mutated.
type Step struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Kind        StepKind `json:"kind"`
	Field       string   `json:"field"`
	// LinkField は composite ステップでプラットフォームと対になるリンクのキー。
	LinkField   string   `json:"linkField,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	Options     []Option `json:"options,omitempty"`
	ReadOnly    bool     `json:"readOnly,omitempty"`
}

// HasOption reports whether value is one of the step's option values.
func (s Step) HasOption(value string) bool {
	for _, opt := range s.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

// OptionLabel returns the label of value, falling back to value itself.
func (s Step) OptionLabel(value string) string {
	for _, opt := range s.Options {
		if opt.Value == value {
			return opt.Label
		}
	}
	return value
}

// Fields returns every answer key the step writes.
func (s Step) Fields() []string {
	switch s.Kind {
	case KindConfirmation:
		return nil
	case KindComposite:
		return []string{s.Field, s.LinkField}
	default:
		return []string{s.Field}
	}
}
