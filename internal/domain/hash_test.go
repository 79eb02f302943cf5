package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentHash(t *testing.T) {
	tests := []struct {
		name      string
		card      Card
		other     Card
		wantEqual bool
	}{
		{
			name:      "deterministic for the same card",
			card:      Card{Type: TypeBasic, Question: "What is the capital of France?"},
			other:     Card{Type: TypeBasic, Question: "What is the capital of France?"},
			wantEqual: true,
		},
		{
			name:      "case and whitespace insensitive",
			card:      Card{Type: TypeBasic, Question: "What  is\tthe capital\nof France?"},
			other:     Card{Type: TypeBasic, Question: "what is the capital of france?"},
			wantEqual: true,
		},
		{
			name:      "answer does not contribute",
			card:      Card{Type: TypeBasic, Question: "Q", Answer: "first"},
			other:     Card{Type: TypeBasic, Question: "Q", Answer: "second"},
			wantEqual: true,
		},
		{
			name:      "type tag keeps same text apart",
			card:      Card{Type: TypeBasic, Question: "shared text"},
			other:     Card{Type: TypeCloze, ClozeText: "shared text"},
			wantEqual: false,
		},
		{
			name:      "different questions differ",
			card:      Card{Type: TypeBasic, Question: "one"},
			other:     Card{Type: TypeBasic, Question: "two"},
			wantEqual: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := ContentHash(tt.card)
			b := ContentHash(tt.other)
			if tt.wantEqual {
				assert.Equal(t, a, b)
			} else {
				assert.NotEqual(t, a, b)
			}
		})
	}
}

func TestCard_PrimaryField(t *testing.T) {
	assert.Equal(t, "q", Card{Type: TypeBasic, Question: "q"}.PrimaryField())
	assert.Equal(t, "stem", Card{Type: TypeChoice, Stem: "stem"}.PrimaryField())
	assert.Equal(t, "text", Card{Type: TypeCloze, ClozeText: "text"}.PrimaryField())
}
