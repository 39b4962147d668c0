package manifest

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrManifestParse is returned when the manifest document cannot be parsed
// or does not carry a top-level version field.
var ErrManifestParse = errors.New("manifest parse error")

// document mirrors the one field of the manifest this service cares about.
// Decoding into a typed struct means only the document's top-level version
// key is considered; nested version keys are ignored.
type document struct {
	Version string `yaml:"version"`
}

// ExtractVersion parses a YAML manifest and returns the Version found in its
// top-level version field. The field value must match MAJOR.MINOR.PATCH with
// an optional +BUILD suffix.
func ExtractVersion(content string) (Version, error) {
	var doc document
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return Version{}, fmt.Errorf("%w: %v", ErrManifestParse, err)
	}

	if doc.Version == "" {
		return Version{}, fmt.Errorf("%w: no version field found in manifest", ErrManifestParse)
	}

	v, err := ParseVersion(doc.Version)
	if err != nil {
		return Version{}, fmt.Errorf("%w: %v", ErrManifestParse, err)
	}
	return v, nil
}
