package curriculum_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hoshiyaar/paathshala/core/curriculum"
)

func mustConcept(t *testing.T, raw string) curriculum.RawConcept {
	t.Helper()
	var c curriculum.RawConcept
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("unmarshaling concept: %v", err)
	}
	return c
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want curriculum.Item
	}{
		{
			name: "declared statement",
			raw:  `{"type": "statement", "text": "The sun is a star."}`,
			want: curriculum.Item{Kind: curriculum.KindStatement, Text: "The sun is a star."},
		},
		{
			name: "statement wins over question-bearing shape",
			raw:  `{"type": "statement", "text": "Plants make food.", "question": "What do plants make?"}`,
			want: curriculum.Item{Kind: curriculum.KindStatement, Text: "Plants make food."},
		},
		{
			name: "content field serves as statement text",
			raw:  `{"type": "concept", "content": "Water boils at 100 degrees."}`,
			want: curriculum.Item{Kind: curriculum.KindStatement, Text: "Water boils at 100 degrees."},
		},
		{
			name: "declared mcq",
			raw:  `{"type": "mcq", "question": "2+2?", "options": ["3", "4"], "answer": "4"}`,
			want: curriculum.Item{Kind: curriculum.KindMultipleChoice, Question: "2+2?", Options: []string{"3", "4"}, Answer: "4"},
		},
		{
			name: "mcq inferred from options plus question",
			raw:  `{"question": "Pick one", "options": ["a", "b"], "answer": "a"}`,
			want: curriculum.Item{Kind: curriculum.KindMultipleChoice, Question: "Pick one", Options: []string{"a", "b"}, Answer: "a"},
		},
		{
			name: "authored empty options still mark an mcq",
			raw:  `{"question": "Pick one", "options": [], "answer": "a"}`,
			want: curriculum.Item{Kind: curriculum.KindMultipleChoice, Question: "Pick one", Options: []string{}, Answer: "a"},
		},
		{
			name: "null answer still reads as fill-in",
			raw:  `{"question": "The ___ rises in the east", "answer": null}`,
			want: curriculum.Item{Kind: curriculum.KindFillInTheBlank, Question: "The ___ rises in the east"},
		},
		{
			name: "fib inferred from question plus answer",
			raw:  `{"question": "The capital of India is ___", "answer": "Delhi"}`,
			want: curriculum.Item{Kind: curriculum.KindFillInTheBlank, Question: "The capital of India is ___", Answer: "Delhi"},
		},
		{
			name: "fib tolerates numeric answer",
			raw:  `{"type": "fillups", "question": "3x3 = ___", "answer": 9}`,
			want: curriculum.Item{Kind: curriculum.KindFillInTheBlank, Question: "3x3 = ___", Answer: "9"},
		},
		{
			name: "rearrange mirrors words into options",
			raw:  `{"type": "rearrange", "question": "Order the words", "words": ["sky", "is", "blue", "the"]}`,
			want: curriculum.Item{
				Kind:     curriculum.KindRearrange,
				Question: "Order the words",
				Words:    []string{"sky", "is", "blue", "the"},
				Options:  []string{"sky", "is", "blue", "the"},
			},
		},
		{
			name: "rearrange inferred from words alone",
			raw:  `{"question": "Unscramble", "words": ["b", "a"]}`,
			want: curriculum.Item{
				Kind:     curriculum.KindRearrange,
				Question: "Unscramble",
				Words:    []string{"b", "a"},
				Options:  []string{"b", "a"},
			},
		},
		{
			name: "unknown declared type with text falls back to statement",
			raw:  `{"type": "banana", "text": "Keep me."}`,
			want: curriculum.Item{Kind: curriculum.KindStatement, Text: "Keep me."},
		},
		{
			name: "image fields carried over",
			raw:  `{"type": "statement", "text": "See figure.", "imageUrl": "https://cdn/x.png", "images": ["https://cdn/a.png", ""]}`,
			want: curriculum.Item{
				Kind:     curriculum.KindStatement,
				Text:     "See figure.",
				ImageURL: "https://cdn/x.png",
				Images:   []string{"https://cdn/a.png"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := curriculum.Classify(mustConcept(t, tt.raw))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyNeverDiscards(t *testing.T) {
	// a concept with no recognizable fields still becomes a statement
	// carrying its raw payload
	raw := `{"mystery": true, "payload": [1, 2, 3]}`
	got := curriculum.Classify(mustConcept(t, raw))
	assert.Equal(t, curriculum.KindStatement, got.Kind)
	assert.JSONEq(t, raw, got.Text)
}
