package engine

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Summary is the machine-readable counterpart of the diagnostic log.
type Summary struct {
	Source     string         `yaml:"source"`
	PhotoCount int            `yaml:"photo_count"`
	Photos     []PhotoSummary `yaml:"photos"`
	Warnings   []string       `yaml:"warnings"`
}

type PhotoSummary struct {
	Path         string  `yaml:"path"`
	Index        int     `yaml:"index"`
	X            int     `yaml:"x"`
	Y            int     `yaml:"y"`
	Width        int     `yaml:"width"`
	Height       int     `yaml:"height"`
	AngleDegrees float64 `yaml:"angle_degrees"`
}

// WriteSummary writes the extraction summary to a YAML file.
func WriteSummary(res *PageResult, path string) error {
	s := Summary{
		Source:     res.SourcePath,
		PhotoCount: len(res.Photos),
		Warnings:   []string{},
	}
	for _, w := range res.Warnings {
		s.Warnings = append(s.Warnings, string(w))
	}
	for _, ph := range res.Photos {
		s.Photos = append(s.Photos, PhotoSummary{
			Path:         ph.Path,
			Index:        ph.OrderIndex,
			X:            ph.Box.Min.X,
			Y:            ph.Box.Min.Y,
			Width:        ph.Box.Dx(),
			Height:       ph.Box.Dy(),
			AngleDegrees: ph.AngleDegrees,
		})
	}

	data, err := yaml.Marshal(&s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadSummary reads a previously written extraction summary.
func ReadSummary(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Summary
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
