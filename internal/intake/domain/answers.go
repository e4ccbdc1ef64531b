package domain

// フィールドキー。ウィザードの回答セット・送信 JSON・シートの列で共通に使う。
const (
	FieldRegion                 = "region"
	FieldCountry                = "country"
	FieldName                   = "name"
	FieldEmail                  = "email"
	FieldTelegram               = "telegram"
	FieldTwitter                = "twitter"
	FieldSocialPlatform         = "socialPlatform"
	FieldSocialPlatformLink     = "socialPlatformLink"
	FieldPreferredContactMethod = "preferredContactMethod"
)

// Answers is the mutable answer set collected by the wizard.
type Answers map[string]string

// NewAnswers は steps が書き込むすべてのキーを空文字で初期化した回答セットを返す。
func NewAnswers(steps []Step) Answers {
	answers := Answers{}
	for _, step := range steps {
		for _, key := range step.Fields() {
			if key != "" {
				answers[key] = ""
			}
		}
	}
	if _, ok := answers[FieldCountry]; ok {
		answers[FieldRegion] = ""
	}
	return answers
}

// Get returns the value stored for key or "".
func (a Answers) Get(key string) string {
	return a[key]
}

// Clone returns an independent copy.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
