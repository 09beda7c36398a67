// internal/parser/normalize_test.go
package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"Picape Elétrica", "picape eletrica"},
		{"cupê", "cupe"},
		{"São Paulo", "sao paulo"},
		{"HÍBRIDO", "hibrido"},
		{"preço até R$ 50.000", "preco ate r$ 50.000"},
		{"日本", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"HR-V", "2x"}, Tokens("a HR-V é 2x"))
	assert.Equal(t, []string{"Você", "quis", "T-Cross"}, Tokens("Você quis T-Cross?"))
	assert.Empty(t, Tokens(""))
}

func TestFoldToken(t *testing.T) {
	assert.Equal(t, "hr v", foldToken("HR-V"))
	assert.Equal(t, "t cross", foldToken(" T-Cross "))
}
