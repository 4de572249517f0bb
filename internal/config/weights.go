package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aristath/itemsentinel/internal/modules/analytics"
)

// LoadWeights returns the default weights with the YAML file at path merged over them.
// An empty path yields the defaults. The file only needs the weights it changes:
//
//	investment:
//	  hero_trend: 0.30
//	  liquidity: 0.05
func LoadWeights(path string) (analytics.WeightConfig, error) {
	defaults := analytics.DefaultWeights()
	if path == "" {
		return defaults, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return analytics.WeightConfig{}, fmt.Errorf("failed to read weights file: %w", err)
	}

	var override analytics.WeightConfig
	if err := yaml.Unmarshal(data, &override); err != nil {
		return analytics.WeightConfig{}, fmt.Errorf("failed to parse weights file %s: %w", path, err)
	}

	return defaults.Merge(override), nil
}
