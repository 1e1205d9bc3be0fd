package scene

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Stronautt/PathTracer/log"
)

var logger = log.New("scene")

// Load reads a scene file, dispatching on the extension: .json parses as
// JSON, anything else as YAML.
//
// Parameters:
//   - path: the scene file path
//
// Returns:
//   - *Scene: the parsed scene with schema defaults applied
//   - error: a wrapped read or parse error
func Load(path string) (*Scene, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file %s: %w", path, err)
	}

	s := Empty()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(contents, s); err != nil {
			return nil, fmt.Errorf("failed to parse JSON scene file %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(contents, s); err != nil {
			return nil, fmt.Errorf("failed to parse YAML scene file %s: %w", path, err)
		}
	}

	logger.Infof("Loaded scene: %d shapes, %d models", len(s.Shapes), len(s.Models))
	return s, nil
}

// Save writes the scene back to disk as YAML, mirroring the load schema.
// Zero-valued scalar fields are omitted via the omitempty yaml tags.
//
// Parameters:
//   - s: the scene to persist
//   - path: the destination file path
//
// Returns:
//   - error: a wrapped marshal or write error
func Save(s *Scene, path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal scene: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write scene file %s: %w", path, err)
	}
	logger.Infof("Saved scene to %s (%d shapes)", path, len(s.Shapes))
	return nil
}
