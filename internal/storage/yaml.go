package storage

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// EncodeYAML renders v as YAML with the same indent as the JSON documents
func EncodeYAML(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(4)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
