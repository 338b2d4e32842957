package detector

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lexiscan/lexiscan/internal/domain"
)

// ParseProfile decodes a detector profile from YAML. Validation happens at
// engine compile time, not here, so a parsed profile is not yet known-good.
func ParseProfile(data []byte) (domain.DetectorProfile, error) {
	var p domain.DetectorProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return domain.DetectorProfile{}, fmt.Errorf("parse detector profile: %w", err)
	}
	return p, nil
}

// LoadProfile reads a detector profile from a YAML file.
func LoadProfile(path string) (domain.DetectorProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.DetectorProfile{}, fmt.Errorf("read profile %s: %w", path, err)
	}
	return ParseProfile(data)
}

// MarshalProfile encodes a profile back to YAML, for export endpoints and
// round-trip tests.
func MarshalProfile(p domain.DetectorProfile) ([]byte, error) {
	data, err := yaml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal detector profile: %w", err)
	}
	return data, nil
}
