package llm

import (
	"testing"
)

var testSchema = &Schema{
	Name:        "test-quiz",
	Description: "A small question set",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{"type": "string"},
						"options": map[string]any{
							"type":     "array",
							"items":    map[string]any{"type": "string"},
							"minItems": 4,
							"maxItems": 4,
						},
						"answer":     map[string]any{"type": "string", "enum": []any{"A", "B", "C", "D"}},
						"difficulty": map[string]any{"type": "string"},
					},
					"required": []any{"question", "options", "answer"},
				},
			},
		},
		"required": []any{"questions"},
	},
}

func TestCheckStructured(t *testing.T) {
	structured := Request{Schema: testSchema}

	tests := []struct {
		name     string
		req      Request
		text     string
		stop     string
		wantKind ErrorKind
	}{
		{
			name: "valid document",
			req:  structured,
			text: `{"questions":[{"question":"2+2?","options":["3","4","5","6"],"answer":"B"}]}`,
			stop: "end",
		},
		{
			name: "text request is not validated",
			req:  Request{},
			text: "Q: anything",
			stop: "max_tokens",
		},
		{
			name:     "truncated",
			req:      structured,
			text:     `{"questions":[`,
			stop:     "max_tokens",
			wantKind: KindTruncated,
		},
		{
			name:     "not json",
			req:      structured,
			text:     "Q: 2+2?",
			stop:     "end",
			wantKind: KindInvalidResponse,
		},
		{
			name:     "missing answer",
			req:      structured,
			text:     `{"questions":[{"question":"2+2?","options":["3","4","5","6"]}]}`,
			stop:     "end",
			wantKind: KindInvalidResponse,
		},
		{
			name:     "three options",
			req:      structured,
			text:     `{"questions":[{"question":"2+2?","options":["3","4","5"],"answer":"B"}]}`,
			stop:     "end",
			wantKind: KindInvalidResponse,
		},
		{
			name:     "answer outside enum",
			req:      structured,
			text:     `{"questions":[{"question":"2+2?","options":["3","4","5","6"],"answer":"E"}]}`,
			stop:     "end",
			wantKind: KindInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkStructured("test", tt.req, tt.text, tt.stop)
			if tt.wantKind == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !IsKind(err, tt.wantKind) {
				t.Fatalf("expected %s, got %T (%v)", tt.wantKind, err, err)
			}
			if pe := err.(*ProviderError); pe.Content != tt.text {
				t.Errorf("Content = %q, want offending output", pe.Content)
			}
		})
	}
}

func TestCompileSchemaCaches(t *testing.T) {
	s := &Schema{Name: "cache-check", Definition: map[string]any{"type": "object"}}
	first, err := compileSchema(s)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	second, err := compileSchema(s)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if first != second {
		t.Fatal("expected the cached schema to be reused")
	}
}
