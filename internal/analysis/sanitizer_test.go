package analysis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModelResponse(t *testing.T) {
	tests := []struct {
		want    map[string]any
		name    string
		raw     string
		wantErr bool
	}{
		{
			name: "clean JSON passes through",
			raw:  `{"healthScore": 75, "summary": "Looking good"}`,
			want: map[string]any{"healthScore": float64(75), "summary": "Looking good"},
		},
		{
			name: "json code fence",
			raw:  "Here is the analysis:\n```json\n{\"healthScore\": 60}\n```\nHope that helps!",
			want: map[string]any{"healthScore": float64(60)},
		},
		{
			name: "bare code fence",
			raw:  "```\n{\"healthScore\": 60}\n```",
			want: map[string]any{"healthScore": float64(60)},
		},
		{
			name: "leading and trailing prose",
			raw:  `Sure! {"healthScore": 42} Let me know if you need anything else.`,
			want: map[string]any{"healthScore": float64(42)},
		},
		{
			name: "trailing comma in object",
			raw:  `{"healthScore": 75, "summary": "ok",}`,
			want: map[string]any{"healthScore": float64(75), "summary": "ok"},
		},
		{
			name: "trailing comma in array",
			raw:  `{"items": [1, 2, 3,]}`,
			want: map[string]any{"items": []any{float64(1), float64(2), float64(3)}},
		},
		{
			name: "line comments stripped",
			raw:  "{\n// the overall score\n\"healthScore\": 80\n}",
			want: map[string]any{"healthScore": float64(80)},
		},
		{
			name: "block comments stripped",
			raw:  `{"healthScore": 80 /* out of 100 */}`,
			want: map[string]any{"healthScore": float64(80)},
		},
		{
			name: "raw newline inside string",
			raw:  "{\"summary\": \"line one\nline two\"}",
			want: map[string]any{"summary": "line one line two"},
		},
		{
			name: "slashes inside strings survive",
			raw:  `{"url": "https://example.com/path"}`,
			want: map[string]any{"url": "https://example.com/path"},
		},
		{
			name: "comma-bracket sequences inside strings survive",
			raw:  `{"summary": "values like ,] and ,} are fine"}`,
			want: map[string]any{"summary": "values like ,] and ,} are fine"},
		},
		{
			name: "escaped quote inside string",
			raw:  `{"summary": "she said \"save more\", then left"}`,
			want: map[string]any{"summary": `she said "save more", then left`},
		},
		{
			name:    "no JSON at all",
			raw:     "I'm sorry, I can't analyze that.",
			wantErr: true,
		},
		{
			name:    "empty input",
			raw:     "",
			wantErr: true,
		},
		{
			name:    "braces but not JSON",
			raw:     "{this is not json}",
			wantErr: true,
		},
		{
			name:    "truncated object",
			raw:     `{"healthScore": 75, "summary": "cut off`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseModelResponse(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrUnparseable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Valid JSON must survive the repair pass byte-for-byte semantically:
// repairing an already-clean response and parsing it directly must agree.
func TestRepairJSONIdempotentOnValidInput(t *testing.T) {
	inputs := []string{
		`{"a": 1, "b": [1, 2, 3], "c": {"d": "e"}}`,
		`{"url": "https://example.com//double//slash"}`,
		`{"text": "comment markers /* inside */ a string // stay"}`,
		`{"nested": {"deep": {"deeper": [{"x": 1.5}]}}}`,
	}

	for _, input := range inputs {
		repaired := repairJSON(input)

		var direct, viaRepair map[string]any
		require.NoError(t, json.Unmarshal([]byte(input), &direct))
		require.NoError(t, json.Unmarshal([]byte(repaired), &viaRepair))
		assert.Equal(t, direct, viaRepair, "repair changed semantics of %q", input)
	}
}

func TestExtractCandidate(t *testing.T) {
	t.Run("fence wins over surrounding braces", func(t *testing.T) {
		raw := "{not this} ```json\n{\"a\": 1}\n``` {nor this}"
		candidate, ok := extractCandidate(raw)
		require.True(t, ok)
		assert.Equal(t, `{"a": 1}`, candidate)
	})

	t.Run("brace slice spans nested objects", func(t *testing.T) {
		raw := `prefix {"a": {"b": 2}} suffix`
		candidate, ok := extractCandidate(raw)
		require.True(t, ok)
		assert.Equal(t, `{"a": {"b": 2}}`, candidate)
	})

	t.Run("no braces", func(t *testing.T) {
		_, ok := extractCandidate("nothing here")
		assert.False(t, ok)
	})
}
