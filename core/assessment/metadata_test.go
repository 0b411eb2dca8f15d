package assessment

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMetadata(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind MetadataKind
		check    func(t *testing.T, m Metadata)
	}{
		{name: "empty", raw: "", wantKind: MetadataNone},
		{name: "null", raw: "null", wantKind: MetadataNone},
		{name: "empty object", raw: "{}", wantKind: MetadataNone},
		{name: "none", raw: `{"kind":"none"}`, wantKind: MetadataNone},
		{
			name:     "scale",
			raw:      `{"kind":"scale","data":{"min_label":"nunca","max_label":"siempre"}}`,
			wantKind: MetadataScale,
			check: func(t *testing.T, m Metadata) {
				assert.Equal(t, &ScaleMetadata{MinLabel: "nunca", MaxLabel: "siempre"}, m.Scale)
			},
		},
		{
			name:     "word order",
			raw:      `{"kind":"word_order","data":{"tokens":["ladra","el","perro"]}}`,
			wantKind: MetadataWordOrder,
			check: func(t *testing.T, m Metadata) {
				assert.Equal(t, []string{"ladra", "el", "perro"}, m.WordOrder.Tokens)
			},
		},
		{
			name:     "image choice",
			raw:      `{"kind":"image_choice","data":{"prompt_image_url":"https://img/p.png","option_images":{"Gato":"https://img/g.png"}}}`,
			wantKind: MetadataImageChoice,
			check: func(t *testing.T, m Metadata) {
				assert.Equal(t, "https://img/p.png", m.ImageChoice.PromptImageURL)
				assert.Equal(t, "https://img/g.png", m.ImageChoice.OptionImages["Gato"])
			},
		},
		{
			name:     "free-form object",
			raw:      `{"dificultad":"alta","tags":["a","b"]}`,
			wantKind: MetadataLegacy,
			check: func(t *testing.T, m Metadata) {
				assert.JSONEq(t, `{"dificultad":"alta","tags":["a","b"]}`, string(m.Legacy))
			},
		},
		{name: "unknown kind", raw: `{"kind":"audio","data":{"url":"x"}}`, wantKind: MetadataLegacy},
		{name: "known kind, unexpected fields", raw: `{"kind":"scale","data":{"min":1}}`, wantKind: MetadataLegacy},
		{name: "known kind, no data", raw: `{"kind":"word_order"}`, wantKind: MetadataLegacy},
		{name: "array", raw: `[1,2,3]`, wantKind: MetadataLegacy},
		{name: "string", raw: `"hola"`, wantKind: MetadataLegacy},
		{name: "invalid json", raw: `{"kind":`, wantKind: MetadataLegacy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := DecodeMetadata([]byte(tt.raw))
			assert.Equal(t, tt.wantKind, m.Kind)
			if tt.wantKind == MetadataLegacy && tt.raw != "" {
				assert.NotEmpty(t, m.Legacy)
			}
			if tt.check != nil {
				tt.check(t, m)
			}
		})
	}
}

func TestMetadata_JSONRoundTrip(t *testing.T) {
	metas := []Metadata{
		{},
		NewScaleMetadata("nunca", "siempre"),
		NewWordOrderMetadata([]string{"el", "perro"}),
		NewImageChoiceMetadata("", map[string]string{"Gato": "https://img/g.png"}),
		DecodeMetadata([]byte(`{"dificultad":"alta"}`)),
	}
	for _, m := range metas {
		raw, err := json.Marshal(m)
		require.NoError(t, err)

		var got Metadata
		require.NoError(t, json.Unmarshal(raw, &got))
		if m.IsZero() {
			assert.Equal(t, MetadataNone, got.Kind)
			continue
		}
		assert.Equal(t, m.Kind, got.Kind, string(raw))
		assert.Equal(t, m, got, string(raw))
	}
}

func TestMetadata_InQuestion(t *testing.T) {
	raw := `{"id":"q1","type":"free_text","points":3,"metadata":{"legacy_hint":"ver manual"}}`
	var q Question
	require.NoError(t, json.Unmarshal([]byte(raw), &q))
	assert.Equal(t, MetadataLegacy, q.Metadata.Kind)

	out, err := json.Marshal(q)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"metadata":{"kind":"legacy","data":{"legacy_hint":"ver manual"}}`)
}
