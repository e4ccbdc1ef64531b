package domain

import (
	"fmt"
	"strings"
)

// Variant selects one of the hard-coded step lists.
type Variant string

const (
	VariantAffiliate   Variant = "affiliate"
	VariantEarlyAccess Variant = "early-access"
)

// SocialPlatforms are the choices offered by the composite platform step.
var SocialPlatforms = []Option{
	{Value: "x", Label: "X (Twitter)"},
	{Value: "instagram", Label: "Instagram"},
	{Value: "tiktok", Label: "TikTok"},
	{Value: "youtube", Label: "YouTube"},
	{Value: "linkedin", Label: "LinkedIn"},
	{Value: "other", Label: "Other"},
}

// ContactMethods are the choices for the preferred contact method step.
var ContactMethods = []Option{
	{Value: "email", Label: "Email"},
	{Value: "telegram", Label: "Telegram"},
}

// ConfirmationNotes are shown with the summary and again after a successful submission.
var ConfirmationNotes = []string{
	"Affiliates will be selected at Ether.fi's discretion.",
	"Affiliates will be notified of approval via email or Telegram.",
	"We will never ask for your secret key or seed phrase.",
	"Only one application per user.",
}

// ParseVariant は文字列からバリアントを解決する。空文字は affiliate とみなす。
func ParseVariant(value string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(value))) {
	case "", VariantAffiliate:
		return VariantAffiliate, nil
	case VariantEarlyAccess:
		return VariantEarlyAccess, nil
	default:
		return "", fmt.Errorf("unknown wizard variant %q", value)
	}
}

// StepsFor returns a fresh step list for the variant.
func StepsFor(variant Variant) []Step {
	if variant == VariantEarlyAccess {
		return EarlyAccessSteps()
	}
	return AffiliateSteps()
}

func countryOptions() []Option {
	countries := Countries()
	options := make([]Option, 0, len(countries))
	for _, country := range countries {
		options = append(options, Option{Value: country, Label: country})
	}
	return options
}

func regionOptions() []Option {
	options := make([]Option, 0, len(Regions))
	for _, region := range Regions {
		options = append(options, Option{Value: region, Label: region})
	}
	return options
}

func emailStep(id int) Step {
	return Step{
		ID: id, Name: "Email", Kind: KindEmail, Field: FieldEmail,
		Title:       "Enter your email address",
		Description: "We'll contact you at this address if your application is accepted.",
		Placeholder: "example@email.com",
	}
}

func telegramStep(id int) Step {
	return Step{
		ID: id, Name: "Telegram", Kind: KindText, Field: FieldTelegram,
		Title:       "Enter your Telegram username",
		Description: "We'll use this to contact you about exclusive opportunities.",
		Placeholder: "@yourusername",
	}
}

func countryStep(id int) Step {
	return Step{
		ID: id, Name: "Country", Kind: KindSelect, Field: FieldCountry,
		Title:       "Select your country",
		Description: "Choose the country you're located in.",
		Placeholder: "Select a country",
		Options:     countryOptions(),
	}
}

func regionStep(id int) Step {
	return Step{
		ID: id, Name: "Region", Kind: KindSelect, Field: FieldRegion,
		Title:       "Your region",
		Description: "Your region is automatically determined based on your country selection.",
		Placeholder: "Region will be auto-populated",
		Options:     regionOptions(),
		ReadOnly:    true,
	}
}

func confirmationStep(id int) Step {
	return Step{
		ID: id, Name: "Confirmation", Kind: KindConfirmation, Field: "confirmation",
		Title:       "Confirm your information",
		Description: "We will never ask for your secret key or seed phrase.",
		Placeholder: "All set!",
	}
}

// AffiliateSteps is the affiliate-program application with the composite platform step.
func AffiliateSteps() []Step {
	return []Step{
		{
			ID: 1, Name: "Name", Kind: KindText, Field: FieldName,
			Title:       "What's your name?",
			Description: "Tell us how we should address you.",
			Placeholder: "Jane Doe",
		},
		emailStep(2),
		telegramStep(3),
		{
			ID: 4, Name: "Platform", Kind: KindComposite,
			Field: FieldSocialPlatform, LinkField: FieldSocialPlatformLink,
			Title:       "Where do you create content?",
			Description: "Pick your main platform and paste a link to your profile.",
			Placeholder: "https://x.com/yourhandle",
			Options:     append([]Option(nil), SocialPlatforms...),
		},
		countryStep(5),
		regionStep(6),
		{
			ID: 7, Name: "Contact", Kind: KindSelect, Field: FieldPreferredContactMethod,
			Title:       "How should we contact you?",
			Description: "Choose your preferred contact method.",
			Placeholder: "Select a contact method",
			Options:     append([]Option(nil), ContactMethods...),
		},
		confirmationStep(8),
	}
}

// EarlyAccessSteps is the original six-step early-access form with a plain X handle step.
func EarlyAccessSteps() []Step {
	return []Step{
		emailStep(1),
		telegramStep(2),
		{
			ID: 3, Name: "Twitter", Kind: KindText, Field: FieldTwitter,
			Title:       "Enter your X (Twitter) handle",
			Description: "We'll use this to generate a banner image you can share on X (Twitter).",
			Placeholder: "@yourhandle",
		},
		countryStep(4),
		regionStep(5),
		confirmationStep(6),
	}
}
