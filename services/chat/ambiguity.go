package chat

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/alcaldiayopal/chatbot-backend/models"
)

// topicFamily groups a set of trigger keywords with the disambiguators that
// make the topic specific and the suggestion menu offered when none is
// present. Disambiguators and suggestions differ on purpose: the menu shows
// citizen-facing labels while matching stays permissive.
type topicFamily struct {
	triggers       []string
	disambiguators []string
	suggestions    []string
}

var topicFamilies = []topicFamily{
	{
		triggers:       []string{"recibo", "impuesto"},
		disambiguators: []string{"predial", "industria y comercio", "delineación urbana", "impuesto vehicular", "estampilla"},
		suggestions:    []string{"predial", "industria y comercio", "delineación urbana", "impuesto vehicular público", "estampilla"},
	},
	{
		triggers:       []string{"certificado"},
		disambiguators: []string{"residencia", "discapacidad", "uso de suelos", "sana posesión", "estratificacion y nomenclatura"},
		suggestions:    []string{"residencia", "discapacidad", "uso de suelos", "sana posesión", "estratificacion y nomenclatura"},
	},
	{
		triggers:       []string{"rity"},
		disambiguators: []string{"persona jurídica", "persona natural", "consorcio o union temporal", "union temporal", "suceciones ilíquidas"},
		suggestions:    []string{"persona jurídica", "persona natural", "consorcio", "union temporal", "suceciones ilíquidas"},
	},
}

var optionNumber = regexp.MustCompile(`^(\d+)$`)

// DetectAmbiguity reports whether the message names a known topic family
// without any of its disambiguators, in which case the family's suggestion
// menu is returned. Matching is lowercase substring, accents intact, so
// accented disambiguators must be typed as written.
func DetectAmbiguity(message string) ([]string, bool) {
	normalized := strings.ToLower(message)

	for _, family := range topicFamilies {
		if !containsAny(normalized, family.triggers) {
			continue
		}
		if containsAny(normalized, family.disambiguators) {
			continue
		}
		return family.suggestions, true
	}
	return nil, false
}

// ResolveAmbiguity interprets the user's reply to a pending disambiguation
// menu: either a 1-based option number or the exact option text, matched
// case-insensitively. On success the resolved message is the original
// ambiguous question with the chosen option appended. ok is false when the
// reply matches nothing, leaving the pending state for the caller to keep.
func ResolveAmbiguity(message string, pending *models.PendingAmbiguity) (string, bool) {
	if pending == nil {
		return "", false
	}
	normalized := strings.TrimSpace(strings.ToLower(message))

	if m := optionNumber.FindStringSubmatch(normalized); m != nil {
		index, err := strconv.Atoi(m[1])
		if err == nil && index >= 1 && index <= len(pending.Suggestions) {
			return pending.OriginalMessage + " " + pending.Suggestions[index-1], true
		}
	}

	for _, s := range pending.Suggestions {
		if strings.ToLower(s) == normalized {
			return pending.OriginalMessage + " " + s, true
		}
	}
	return "", false
}
