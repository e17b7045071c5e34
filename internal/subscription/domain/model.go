package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidMobile = errors.New("mobile number must be 7 to 11 digits")
	ErrNoMobile      = errors.New("no mobile number on the cached profile")
)

// FeatureList tolerates the shapes the upstream has returned for plan
// features: a JSON array of strings, a single string (comma or newline
// separated), or other scalar values.
type FeatureList []string

func (f *FeatureList) UnmarshalJSON(data []byte) error {
	var arr []any
	if err := json.Unmarshal(data, &arr); err == nil {
		out := make(FeatureList, 0, len(arr))
		for _, v := range arr {
			if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
				out = append(out, s)
			}
		}
		*f = out
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = splitFeatures(s)
		return nil
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*f = nil
		return nil
	}
	*f = FeatureList{strings.TrimSpace(fmt.Sprint(v))}
	return nil
}

func splitFeatures(s string) FeatureList {
	seps := func(r rune) bool { return r == ',' || r == '\n' || r == ';' }

	var out FeatureList
	for _, part := range strings.FieldsFunc(s, seps) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Plan is a subscription package offered to professionals.
type Plan struct {
	ID          string      `json:"_id"`
	Name        string      `json:"name"`
	Price       json.Number `json:"price,omitempty"`
	Duration    string      `json:"duration,omitempty"`
	Features    FeatureList `json:"features,omitempty"`
	CurrentPlan bool        `json:"isCurrentPlan,omitempty"`
}

// NormalizeMobile strips punctuation and whitespace, leaving digits only.
func NormalizeMobile(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateMobile enforces the 7-11 digit bound on a normalized number.
func ValidateMobile(normalized string) error {
	if len(normalized) < 7 || len(normalized) > 11 {
		return ErrInvalidMobile
	}
	return nil
}
