package config

import (
	"github.com/jpalmerr/gradeboard"
)

// BuildSources converts parsed configuration into SDK Source objects, in
// configuration order.
func BuildSources(cfg *Config) ([]gradeboard.Source, error) {
	sources := make([]gradeboard.Source, 0, len(cfg.Sources))
	for _, sc := range cfg.Sources {
		src, err := buildSource(sc)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// buildSource converts a single SourceConfig to an SDK Source.
func buildSource(sc SourceConfig) (gradeboard.Source, error) {
	var opts []gradeboard.SourceOption

	if sc.Timeout != 0 {
		opts = append(opts, gradeboard.WithTimeout(sc.Timeout.Duration()))
	}

	if sc.Interval != 0 {
		opts = append(opts, gradeboard.WithInterval(sc.Interval.Duration()))
	}

	if f := sc.Fields; f != nil {
		opts = append(opts, gradeboard.WithFields(gradeboard.Fields{
			ID:     f.ID,
			Name:   f.Name,
			Scores: f.Scores,
		}))
	}

	if p := sc.Partition; p != nil {
		opts = append(opts, gradeboard.WithPartition(buildPartition(*p)))
	}

	if c := sc.Colors; c != nil {
		opts = append(opts, gradeboard.WithOutcomeColors(gradeboard.OutcomeColors{
			Passed: gradeboard.Color(c.Passed),
			Failed: gradeboard.Color(c.Failed),
		}))
	}

	if len(sc.Palette) > 0 {
		palette := make(gradeboard.Palette, len(sc.Palette))
		for i, c := range sc.Palette {
			palette[i] = gradeboard.Color(c)
		}
		opts = append(opts, gradeboard.WithPalette(palette))
	}

	var threshold float64
	if sc.Threshold != nil {
		threshold = *sc.Threshold
	}
	return gradeboard.NewSource(sc.Name, sc.URL, threshold, opts...)
}

// buildPartition converts a PartitionConfig to a field partition. Categories
// without a label show their value; categories without a color take the
// default palette color of their position.
func buildPartition(pc PartitionConfig) gradeboard.Partition {
	title := pc.Title
	if title == "" {
		title = pc.Field
	}

	categories := make([]gradeboard.Category, len(pc.Categories))
	for i, cc := range pc.Categories {
		label := cc.Label
		if label == "" {
			label = cc.Value
		}
		color := gradeboard.Color(cc.Color)
		if color == "" {
			color = gradeboard.DefaultPalette.At(i)
		}
		categories[i] = gradeboard.Category{Value: cc.Value, Label: label, Color: color}
	}

	return gradeboard.FieldPartition(title, pc.Field, categories...)
}
