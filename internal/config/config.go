package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	InputPath           string  `yaml:"input"`
	OutputDir           string  `yaml:"output_dir"`
	DPI                 int     `yaml:"dpi"`
	Detector            string  `yaml:"detector"`
	MinAreaRatio        float64 `yaml:"min_area_ratio"`
	MaxAreaRatio        float64 `yaml:"max_area_ratio"`
	MinDimensionPx      int     `yaml:"min_dimension_px"`
	MaxAspectRatio      float64 `yaml:"max_aspect_ratio"`
	BackgroundThreshold int     `yaml:"background_threshold"`
	CropPaddingPx       int     `yaml:"crop_padding_px"`
	Workers             int     `yaml:"workers"`
	WriteSummary        bool    `yaml:"write_summary"`
	Verbose             bool    `yaml:"verbose"`
}

// Default returns the configuration tuned for 300 DPI A4 scans.
func Default() *Config {
	return &Config{
		OutputDir:           "photos",
		DPI:                 300,
		Detector:            "contour",
		MinAreaRatio:        0.02,
		MaxAreaRatio:        0.90,
		MinDimensionPx:      100,
		MaxAspectRatio:      3.5,
		BackgroundThreshold: 220,
		CropPaddingPx:       10,
		Workers:             1,
		WriteSummary:        true,
	}
}

// Load reads a YAML config file and merges it over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("конфигурация %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.MinAreaRatio <= 0 || c.MinAreaRatio >= 1 {
		return fmt.Errorf("min_area_ratio должен быть в (0, 1), получено %g", c.MinAreaRatio)
	}
	if c.MaxAreaRatio <= c.MinAreaRatio || c.MaxAreaRatio > 1 {
		return fmt.Errorf("max_area_ratio должен быть в (min_area_ratio, 1], получено %g", c.MaxAreaRatio)
	}
	if c.MaxAspectRatio < 1 {
		return fmt.Errorf("max_aspect_ratio должен быть >= 1, получено %g", c.MaxAspectRatio)
	}
	if c.BackgroundThreshold < 1 || c.BackgroundThreshold > 254 {
		return fmt.Errorf("background_threshold должен быть в [1, 254], получено %d", c.BackgroundThreshold)
	}
	if c.MinDimensionPx < 1 {
		return fmt.Errorf("min_dimension_px должен быть >= 1, получено %d", c.MinDimensionPx)
	}
	if c.CropPaddingPx < 0 {
		return fmt.Errorf("crop_padding_px должен быть >= 0, получено %d", c.CropPaddingPx)
	}
	if c.DPI < 1 {
		return fmt.Errorf("dpi должен быть >= 1, получено %d", c.DPI)
	}
	return nil
}

// MinDimensionScaled returns the minimum photo side in pixels scaled from the
// 300 DPI baseline to the configured resolution.
func (c *Config) MinDimensionScaled() int {
	scaled := c.MinDimensionPx * c.DPI / 300
	if scaled < 1 {
		return 1
	}
	return scaled
}
