package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]any
		want     string
	}{
		{"present", map[string]any{"nombre": "Carmen"}, "Carmen"},
		{"trimmed", map[string]any{"nombre": "  Luis "}, "Luis"},
		{"absent", map[string]any{"other": "x"}, "Usuario"},
		{"blank", map[string]any{"nombre": "   "}, "Usuario"},
		{"not a string", map[string]any{"nombre": 42}, "Usuario"},
		{"nil metadata", nil, "Usuario"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := WebhookPayload{Metadata: tt.metadata}
			assert.Equal(t, tt.want, p.DisplayName("nombre", "Usuario"))
		})
	}
}
