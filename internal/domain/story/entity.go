// internal/domain/story/entity.go
package story

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// ErrMalformed marks a model response that is not the expected JSON shape.
var ErrMalformed = errors.New("story: malformed model response")

// Acidity levels the model must choose from.
const (
	AcidityLow    = "Rendah"
	AcidityMedium = "Sedang"
	AcidityHigh   = "Tinggi"
)

// HealthSafety is the health block of a coffee analysis.
type HealthSafety struct {
	IsSafeForGERD     bool     `json:"is_safe_for_gerd"`
	Warning           string   `json:"warning"`
	AgeRecommendation string   `json:"age_recommendation"`
	ConditionsToAvoid []string `json:"conditions_to_avoid"`
}

// CoffeeStory is the typed AI analysis of one product.
type CoffeeStory struct {
	Story         string       `json:"story"`
	FlavorProfile string       `json:"flavor_profile"`
	AcidityLevel  string       `json:"acidity_level"`
	HealthSafety  HealthSafety `json:"health_safety"`
	PairingFood   string       `json:"pairing_food"`
	FunFact       string       `json:"fun_fact"`
}

// wire mirrors CoffeeStory with pointers so missing keys are detectable.
type wire struct {
	Story         *string `json:"story"`
	FlavorProfile *string `json:"flavor_profile"`
	AcidityLevel  *string `json:"acidity_level"`
	HealthSafety  *struct {
		IsSafeForGERD     *bool    `json:"is_safe_for_gerd"`
		Warning           string   `json:"warning"`
		AgeRecommendation string   `json:"age_recommendation"`
		ConditionsToAvoid []string `json:"conditions_to_avoid"`
	} `json:"health_safety"`
	PairingFood *string `json:"pairing_food"`
	FunFact     *string `json:"fun_fact"`
}

var fencePattern = regexp.MustCompile("(?i)```(?:json)?\\s*")

// StripFences removes markdown code fences the model sometimes adds despite
// being told not to, and trims surrounding whitespace.
func StripFences(raw string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(raw, ""))
}

// Decode strictly parses a model response into a CoffeeStory.
// Unknown keys, trailing data, missing required keys and an acidity level
// outside Rendah/Sedang/Tinggi are all reported as ErrMalformed.
func Decode(raw string) (CoffeeStory, error) {
	var w wire
	if err := decodeStrict(StripFences(raw), &w); err != nil {
		return CoffeeStory{}, err
	}

	switch {
	case w.Story == nil || strings.TrimSpace(*w.Story) == "":
		return CoffeeStory{}, fmt.Errorf("%w: story is missing", ErrMalformed)
	case w.FlavorProfile == nil:
		return CoffeeStory{}, fmt.Errorf("%w: flavor_profile is missing", ErrMalformed)
	case w.AcidityLevel == nil:
		return CoffeeStory{}, fmt.Errorf("%w: acidity_level is missing", ErrMalformed)
	case w.HealthSafety == nil || w.HealthSafety.IsSafeForGERD == nil:
		return CoffeeStory{}, fmt.Errorf("%w: health_safety is incomplete", ErrMalformed)
	case w.PairingFood == nil:
		return CoffeeStory{}, fmt.Errorf("%w: pairing_food is missing", ErrMalformed)
	case w.FunFact == nil:
		return CoffeeStory{}, fmt.Errorf("%w: fun_fact is missing", ErrMalformed)
	}

	acidity := strings.TrimSpace(*w.AcidityLevel)
	switch acidity {
	case AcidityLow, AcidityMedium, AcidityHigh:
	default:
		return CoffeeStory{}, fmt.Errorf("%w: acidity_level %q", ErrMalformed, acidity)
	}

	conditions := w.HealthSafety.ConditionsToAvoid
	if conditions == nil {
		conditions = []string{}
	}

	return CoffeeStory{
		Story:         strings.TrimSpace(*w.Story),
		FlavorProfile: strings.TrimSpace(*w.FlavorProfile),
		AcidityLevel:  acidity,
		HealthSafety: HealthSafety{
			IsSafeForGERD:     *w.HealthSafety.IsSafeForGERD,
			Warning:           strings.TrimSpace(w.HealthSafety.Warning),
			AgeRecommendation: strings.TrimSpace(w.HealthSafety.AgeRecommendation),
			ConditionsToAvoid: conditions,
		},
		PairingFood: strings.TrimSpace(*w.PairingFood),
		FunFact:     strings.TrimSpace(*w.FunFact),
	}, nil
}

// DecodeNames parses a JSON array of strings (recommendation answers).
func DecodeNames(raw string) ([]string, error) {
	var names []string
	if err := decodeStrict(StripFences(raw), &names); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out, nil
}

func decodeStrict(text string, v any) error {
	if text == "" {
		return fmt.Errorf("%w: empty response", ErrMalformed)
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("%w: trailing data after JSON value", ErrMalformed)
	}
	return nil
}
