package umap

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Options is a partial Config expressed with the snake_case keys used on
// command lines and in run files. Unset fields leave the Config untouched.
type Options struct {
	NNeighbors         *int     `yaml:"n_neighbors" toml:"n_neighbors"`
	NComponents        *int     `yaml:"n_components" toml:"n_components"`
	Metric             *string  `yaml:"metric" toml:"metric"`
	MinkowskiP         *float64 `yaml:"p" toml:"p"`
	NEpochs            *int     `yaml:"n_epochs" toml:"n_epochs"`
	LearningRate       *float64 `yaml:"learning_rate" toml:"learning_rate"`
	Init               *string  `yaml:"init" toml:"init"`
	MinDist            *float64 `yaml:"min_dist" toml:"min_dist"`
	Spread             *float64 `yaml:"spread" toml:"spread"`
	SetOpMixRatio      *float64 `yaml:"set_op_mix_ratio" toml:"set_op_mix_ratio"`
	LocalConnectivity  *float64 `yaml:"local_connectivity" toml:"local_connectivity"`
	RepulsionStrength  *float64 `yaml:"repulsion_strength" toml:"repulsion_strength"`
	NegativeSampleRate *int     `yaml:"negative_sample_rate" toml:"negative_sample_rate"`
	A                  *float64 `yaml:"a" toml:"a"`
	B                  *float64 `yaml:"b" toml:"b"`
	RandomState        *int64   `yaml:"random_state" toml:"random_state"`
}

// ParseOptions parses a textual key/value mapping such as
// "{'n_neighbors': 3, 'min_dist': 0.5}" or a YAML block mapping. Keys that
// do not name a UMAP parameter are rejected. Empty text yields empty Options.
func ParseOptions(text string) (Options, error) {
	var opts Options
	if strings.TrimSpace(text) == "" {
		return opts, nil
	}
	dec := yaml.NewDecoder(strings.NewReader(text))
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil {
		if errors.Is(err, io.EOF) {
			return opts, nil
		}
		return Options{}, fmt.Errorf("umap: parsing options: %w", err)
	}
	return opts, nil
}

// Apply overlays every set field of o onto cfg.
func (o Options) Apply(cfg *Config) {
	setInt(&cfg.NNeighbors, o.NNeighbors)
	setInt(&cfg.NComponents, o.NComponents)
	if o.Metric != nil {
		cfg.Metric = *o.Metric
	}
	setFloat(&cfg.MinkowskiP, o.MinkowskiP)
	setInt(&cfg.NEpochs, o.NEpochs)
	setFloat(&cfg.LearningRate, o.LearningRate)
	if o.Init != nil {
		cfg.Init = Init(*o.Init)
	}
	setFloat(&cfg.MinDist, o.MinDist)
	setFloat(&cfg.Spread, o.Spread)
	setFloat(&cfg.SetOpMixRatio, o.SetOpMixRatio)
	setFloat(&cfg.LocalConnectivity, o.LocalConnectivity)
	setFloat(&cfg.RepulsionStrength, o.RepulsionStrength)
	setInt(&cfg.NegativeSampleRate, o.NegativeSampleRate)
	setFloat(&cfg.A, o.A)
	setFloat(&cfg.B, o.B)
	if o.RandomState != nil {
		cfg.RandomState = *o.RandomState
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
