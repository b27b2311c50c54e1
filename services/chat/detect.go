package chat

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripAccents removes combining diacritical marks after NFD decomposition,
// so "días" and "dias" compare equal.
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// Normalize lowercases, strips accents and trims the message for keyword
// matching.
func Normalize(text string) string {
	lowered := strings.ToLower(text)
	stripped, _, err := transform.String(stripAccents, lowered)
	if err != nil {
		stripped = lowered
	}
	return strings.TrimSpace(stripped)
}

var (
	greetingWords = []string{
		"hola", "holaa", "holi", "holis",
		"buenos dias", "buenas tardes", "buenas noches",
		"saludos", "que tal", "como estas", "hey",
	}
	thanksWords = []string{
		"gracias", "muchas gracias", "mil gracias",
		"se agradece", "te lo agradezco", "gracias por todo",
		"thank you", "thanks", "thx",
	}

	greetingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^hola+!?$`),
		regexp.MustCompile(`^holi+s*!?$`),
		regexp.MustCompile(`^buenas+!?$`),
		regexp.MustCompile(`^saludos+!?$`),
		regexp.MustCompile(`^que\s+onda+!?$`),
	}
	thanksPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^gracias+!?$`),
		regexp.MustCompile(`^mil\s+gracias+!?$`),
		regexp.MustCompile(`^thanks+!?$`),
		regexp.MustCompile(`^thx+!?$`),
	}
	laughPatterns = []*regexp.Regexp{
		regexp.MustCompile(`jaj+a+`),
		regexp.MustCompile(`jeje+`),
		regexp.MustCompile(`jiji+`),
		regexp.MustCompile(`jojo+`),
		regexp.MustCompile(`xd+`),
		regexp.MustCompile(`lol+`),
		regexp.MustCompile(`lmao+`),
		regexp.MustCompile(`haha+`),
		regexp.MustCompile(`hehe+`),
	}
	laughKeywords = []string{"xd", "😂", "🤣", "😆", "😹"}

	digitOption  = regexp.MustCompile(`^[1-9]$`)
	hasLetter    = regexp.MustCompile(`[a-zA-Z]`)
	onlyNonAlpha = regexp.MustCompile(`^[^a-zA-Z]+$`)
)

// IsGreeting reports whether the message is a salutation, either an exact
// pattern match or any greeting keyword appearing as a substring.
func IsGreeting(message string) bool {
	normalized := Normalize(message)
	for _, re := range greetingPatterns {
		if re.MatchString(normalized) {
			return true
		}
	}
	return containsAny(normalized, greetingWords)
}

// IsThanks reports whether the message expresses gratitude.
func IsThanks(message string) bool {
	normalized := Normalize(message)
	for _, re := range thanksPatterns {
		if re.MatchString(normalized) {
			return true
		}
	}
	return containsAny(normalized, thanksWords)
}

// IsLaugh reports whether the message is laughter, textual or emoji.
func IsLaugh(message string) bool {
	normalized := Normalize(message)
	for _, re := range laughPatterns {
		if re.MatchString(normalized) {
			return true
		}
	}
	return containsAny(normalized, laughKeywords)
}

// IsValidMessage applies the general message acceptance rules. Social
// messages (greetings, thanks, laughter) are always valid. While a
// disambiguation is pending, a single digit 1-9 is valid as a menu choice.
// Everything else must be at least 5 characters and contain letters, not
// only digits or symbols.
func IsValidMessage(message string, hasPendingAmbiguity bool) bool {
	trimmed := strings.TrimSpace(message)

	if IsGreeting(trimmed) || IsThanks(trimmed) || IsLaugh(trimmed) {
		return true
	}
	if hasPendingAmbiguity && digitOption.MatchString(trimmed) {
		return true
	}

	if len(trimmed) < 5 {
		return false
	}
	if !hasLetter.MatchString(trimmed) {
		return false
	}
	if onlyNonAlpha.MatchString(trimmed) {
		return false
	}
	return true
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
