package assessment

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

type MetadataKind string

// Metadata kinds
const (
	MetadataNone        MetadataKind = "none"
	MetadataScale       MetadataKind = "scale"
	MetadataWordOrder   MetadataKind = "word_order"
	MetadataImageChoice MetadataKind = "image_choice"
	MetadataLegacy      MetadataKind = "legacy" // anything stored that no known shape decodes
)

type (
	ScaleMetadata struct {
		MinLabel string `json:"min_label"`
		MaxLabel string `json:"max_label"`
	}

	WordOrderMetadata struct {
		Tokens []string `json:"tokens"`
	}

	ImageChoiceMetadata struct {
		PromptImageURL string            `json:"prompt_image_url,omitempty"`
		OptionImages   map[string]string `json:"option_images"` // option text -> image URL
	}
)

// Metadata is a tagged union: Kind says which one of the variant fields is set.
type Metadata struct {
	Kind        MetadataKind
	Scale       *ScaleMetadata
	WordOrder   *WordOrderMetadata
	ImageChoice *ImageChoiceMetadata
	Legacy      json.RawMessage
}

type metadataEnvelope struct {
	Kind MetadataKind    `json:"kind"`
	Data json.RawMessage `json:"data,omitempty"`
}

func NewScaleMetadata(minLabel, maxLabel string) Metadata {
	return Metadata{Kind: MetadataScale, Scale: &ScaleMetadata{MinLabel: minLabel, MaxLabel: maxLabel}}
}

func NewWordOrderMetadata(tokens []string) Metadata {
	return Metadata{Kind: MetadataWordOrder, WordOrder: &WordOrderMetadata{Tokens: tokens}}
}

func NewImageChoiceMetadata(promptURL string, optionImages map[string]string) Metadata {
	return Metadata{Kind: MetadataImageChoice, ImageChoice: &ImageChoiceMetadata{PromptImageURL: promptURL, OptionImages: optionImages}}
}

func (m Metadata) IsZero() bool {
	return m.Kind == "" || m.Kind == MetadataNone
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	env := metadataEnvelope{Kind: m.Kind}
	var data interface{}

	switch m.Kind {
	case "", MetadataNone:
		env.Kind = MetadataNone
	case MetadataScale:
		data = m.Scale
	case MetadataWordOrder:
		data = m.WordOrder
	case MetadataImageChoice:
		data = m.ImageChoice
	case MetadataLegacy:
		if len(m.Legacy) > 0 {
			env.Data = m.Legacy
		}
	default:
		return nil, errors.Errorf("unknown metadata kind %q", m.Kind)
	}

	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, errors.Wrapf(err, "marshalling %s metadata", m.Kind)
		}
		env.Data = raw
	}
	return json.Marshal(env)
}

// UnmarshalJSON never fails: input that does not decode into a known variant is kept verbatim as legacy metadata.
func (m *Metadata) UnmarshalJSON(raw []byte) error {
	*m = DecodeMetadata(raw)
	return nil
}

func DecodeMetadata(raw []byte) Metadata {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("{}")) {
		return Metadata{Kind: MetadataNone}
	}

	legacy := func() Metadata {
		return Metadata{Kind: MetadataLegacy, Legacy: append(json.RawMessage(nil), trimmed...)}
	}

	var env metadataEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return legacy()
	}

	decode := func(dst interface{}) bool {
		if len(env.Data) == 0 {
			return false
		}
		dec := json.NewDecoder(bytes.NewReader(env.Data))
		dec.DisallowUnknownFields()
		return dec.Decode(dst) == nil
	}

	switch env.Kind {
	case MetadataNone:
		return Metadata{Kind: MetadataNone}
	case MetadataScale:
		var s ScaleMetadata
		if decode(&s) {
			return Metadata{Kind: MetadataScale, Scale: &s}
		}
	case MetadataWordOrder:
		var w WordOrderMetadata
		if decode(&w) {
			return Metadata{Kind: MetadataWordOrder, WordOrder: &w}
		}
	case MetadataImageChoice:
		var ic ImageChoiceMetadata
		if decode(&ic) {
			return Metadata{Kind: MetadataImageChoice, ImageChoice: &ic}
		}
	case MetadataLegacy:
		if len(env.Data) > 0 {
			return Metadata{Kind: MetadataLegacy, Legacy: append(json.RawMessage(nil), env.Data...)}
		}
	}
	return legacy()
}
