package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "HOLA", "hola"},
		{"strips accents", "Buenos Días", "buenos dias"},
		{"trims whitespace", "  gracias  ", "gracias"},
		{"keeps enie base letter", "años", "anos"},
		{"plain ascii untouched", "certificado", "certificado"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestIsGreeting(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"hola", true},
		{"Holaaa!", true},
		{"holis", true},
		{"buenas", true},
		{"Buenos días", true},
		{"que onda", true},
		{"hey, necesito ayuda", true},
		{"necesito el certificado de residencia", false},
		{"gracias", false},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, IsGreeting(tt.msg))
		})
	}
}

func TestIsThanks(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"gracias", true},
		{"Mil gracias!", true},
		{"te lo agradezco", true},
		{"thanks", true},
		{"thx", true},
		{"necesito pagar el predial", false},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, IsThanks(tt.msg))
		})
	}
}

func TestIsLaugh(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"jajaja", true},
		{"JAJAJA", true},
		{"jejeje", true},
		{"xd", true},
		{"lol", true},
		{"😂", true},
		{"hahaha", true},
		{"como pago el impuesto predial", false},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, IsLaugh(tt.msg))
		})
	}
}

func TestIsValidMessage(t *testing.T) {
	tests := []struct {
		name    string
		msg     string
		pending bool
		want    bool
	}{
		{"greeting always valid", "hola", false, true},
		{"thanks always valid", "gracias", false, true},
		{"laugh always valid", "jaja", false, true},
		{"digit valid with pending ambiguity", "2", true, true},
		{"digit invalid without pending ambiguity", "2", false, false},
		{"zero never a menu choice", "0", true, false},
		{"too short", "abcd", false, false},
		{"no letters", "12345!!", false, false},
		{"normal question valid", "como pago el impuesto predial", false, true},
		{"whitespace trimmed before length check", "   ab   ", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidMessage(tt.msg, tt.pending))
		})
	}
}
