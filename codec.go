// Serialization codecs for record files.
//
// A Codec turns values into the pretty-printed bytes stored on disk and
// back. The codec also names the file extension, which drives entry
// classification during load and the "<key>.<ext>" naming of every
// backing file. JSON is the default; YAML is provided for directories
// meant to be hand-edited in YAML.
package binder

import (
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Codec encodes and decodes record values. Marshal must produce
// human-readable output — files in a table directory are meant to be
// opened in an editor and diffed.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Extension() string
}

// Available codecs. Both are stateless and safe for concurrent use.
var (
	JSON Codec = jsonCodec{}
	YAML Codec = yamlCodec{}
)

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Extension() string { return "json" }

type yamlCodec struct{}

func (yamlCodec) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

func (yamlCodec) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

func (yamlCodec) Extension() string { return "yaml" }
