package domain

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	telegramPattern = regexp.MustCompile(`^@?[A-Za-z0-9_]{5,32}$`)
	twitterPattern  = regexp.MustCompile(`^@?[A-Za-z0-9_]{1,15}$`)
)

const maxEmailLength = 254

// ValidateEmail は local@domain.tld 形式かどうかを確認し、問題があればメッセージを返す。
func ValidateEmail(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "Email is required"
	}
	if len(trimmed) > maxEmailLength {
		return "Email must be 254 characters or fewer"
	}
	if !emailPattern.MatchString(trimmed) {
		return "Please enter a valid email address"
	}
	return ""
}

// ValidateTelegram checks a Telegram username (optional leading @, 5-32 of letters, digits, underscore).
func ValidateTelegram(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "Telegram username is required"
	}
	if !telegramPattern.MatchString(trimmed) {
		return "Telegram usernames are 5-32 characters: letters, numbers and underscores"
	}
	return ""
}

// ValidateTwitter checks an X (Twitter) handle (optional leading @, up to 15 of letters, digits, underscore).
func ValidateTwitter(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "X (Twitter) handle is required"
	}
	if !twitterPattern.MatchString(trimmed) {
		return "X handles are up to 15 characters: letters, numbers and underscores"
	}
	return ""
}

// ValidateURL accepts absolute http(s) URLs only.
func ValidateURL(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "Link is required"
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" {
		return "Please enter a valid URL"
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "Link must start with http:// or https://"
	}
	return ""
}

// ValidateRequired は空文字（空白のみ含む）を拒否する。
func ValidateRequired(value string) string {
	if strings.TrimSpace(value) == "" {
		return "This field is required"
	}
	return ""
}

// ValidateField dispatches on the field key first and the step kind second.
// region is derived and never validated.
func ValidateField(step Step, key, value string) string {
	switch key {
	case FieldRegion:
		return ""
	case FieldEmail:
		return ValidateEmail(value)
	case FieldTelegram:
		return ValidateTelegram(value)
	case FieldTwitter:
		return ValidateTwitter(value)
	case FieldSocialPlatformLink:
		return ValidateURL(value)
	}

	switch step.Kind {
	case KindEmail:
		return ValidateEmail(value)
	case KindURL:
		return ValidateURL(value)
	case KindSelect, KindComposite:
		if msg := ValidateRequired(value); msg != "" {
			return "Please select an option"
		}
		if len(step.Options) > 0 && !step.HasOption(value) {
			return "Please select one of the listed options"
		}
		return ""
	case KindConfirmation:
		return ""
	default:
		return ValidateRequired(value)
	}
}

// ValidateStep validates every field the step writes and returns the first failing key and message.
func ValidateStep(step Step, answers Answers) (string, string) {
	switch step.Kind {
	case KindConfirmation:
		return "", ""
	case KindComposite:
		if msg := ValidateField(step, step.Field, answers.Get(step.Field)); msg != "" {
			return step.Field, msg
		}
		if msg := ValidateURL(answers.Get(step.LinkField)); msg != "" {
			return step.LinkField, msg
		}
		return "", ""
	default:
		if msg := ValidateField(step, step.Field, answers.Get(step.Field)); msg != "" {
			return step.Field, msg
		}
		return "", ""
	}
}
