package domain

import "strings"

// Application is the completed answer set as received by the submission endpoint.
// Twitter is the legacy handle field kept for clients that predate the platform step.
type Application struct {
	Region                 string  `json:"region"`
	Country                string  `json:"country"`
	Name                   string  `json:"name"`
	Email                  string  `json:"email"`
	Telegram               string  `json:"telegram"`
	SocialPlatform         string  `json:"socialPlatform"`
	SocialPlatformLink     *string `json:"socialPlatformLink,omitempty"`
	Twitter                *string `json:"twitter,omitempty"`
	PreferredContactMethod string  `json:"preferredContactMethod"`
}

// RowWidth はシートに書き込む 1 行の列数。
const RowWidth = 8

// PlatformLink は socialPlatformLink が無い（または空の）場合に旧 twitter フィールドへフォールバックする。
func (a Application) PlatformLink() string {
	if a.SocialPlatformLink != nil && *a.SocialPlatformLink != "" {
		return *a.SocialPlatformLink
	}
	if a.Twitter != nil {
		return *a.Twitter
	}
	return ""
}

// Row returns the fixed-width ordered row appended to the sheet.
func (a Application) Row() []any {
	return []any{
		a.Region,
		a.Country,
		a.Name,
		a.Email,
		a.Telegram,
		a.SocialPlatform,
		a.PlatformLink(),
		a.PreferredContactMethod,
	}
}

// ApplicationFromAnswers converts the wizard answer set into the submission payload.
// Keys the step list never wrote stay absent so the endpoint can tell legacy clients apart.
func ApplicationFromAnswers(answers Answers) Application {
	app := Application{
		Region:                 answers.Get(FieldRegion),
		Country:                answers.Get(FieldCountry),
		Name:                   strings.TrimSpace(answers.Get(FieldName)),
		Email:                  strings.TrimSpace(answers.Get(FieldEmail)),
		Telegram:               strings.TrimSpace(answers.Get(FieldTelegram)),
		SocialPlatform:         answers.Get(FieldSocialPlatform),
		PreferredContactMethod: answers.Get(FieldPreferredContactMethod),
	}
	if link, ok := answers[FieldSocialPlatformLink]; ok {
		link = strings.TrimSpace(link)
		app.SocialPlatformLink = &link
	}
	if handle, ok := answers[FieldTwitter]; ok {
		handle = strings.TrimSpace(handle)
		app.Twitter = &handle
	}
	return app
}
