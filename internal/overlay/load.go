package overlay

import (
	"encoding/json"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	oerrors "github.com/opmodel/apimpub/internal/errors"
)

// Load reads an overlay document from path. JSON and YAML are accepted; YAML
// is converted to JSON first. An empty path yields an empty overlay.
func Load(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading overlay %s: %w", path, err)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, oerrors.Wrap(oerrors.ErrValidation, fmt.Sprintf("overlay %s: %v", path, err))
	}
	return doc, nil
}

// Parse decodes overlay content. The document must be an object; empty
// content is an empty overlay.
func Parse(data []byte) (map[string]any, error) {
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("converting to JSON: %w", err)
	}

	var v any
	if err := json.Unmarshal(jsonData, &v); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}

	switch doc := v.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return doc, nil
	default:
		return nil, fmt.Errorf("top-level value must be an object, got %T", v)
	}
}
