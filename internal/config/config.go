// Package config loads model specifications from YAML files for the tempo CLI.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tempo-ml/tempo/internal/nn"
)

// ModelSpec is the YAML description of a transformer model.
//
// Example:
//
//	model:
//	  d_input: 3
//	  d_model: 64
//	  d_output: 1
//	  q: 8
//	  v: 8
//	  heads: 8
//	  seq_len: 168
//	  layers: 4
//	  dropout: 0.3
//	  chunk_mode: chunk
//	  pe: original
type ModelSpec struct {
	Model ModelSection `yaml:"model"`
}

// ModelSection holds the transformer geometry and options.
type ModelSection struct {
	DInput    int     `yaml:"d_input"`
	DModel    int     `yaml:"d_model"`
	DOutput   int     `yaml:"d_output"`
	Q         int     `yaml:"q"`
	V         int     `yaml:"v"`
	Heads     int     `yaml:"heads"`
	SeqLen    int     `yaml:"seq_len"`
	Layers    int     `yaml:"layers"`
	Dropout   float32 `yaml:"dropout"`
	FFNDim    int     `yaml:"ffn_dim"`
	ChunkMode string  `yaml:"chunk_mode"`
	ChunkSize int     `yaml:"chunk_size"`
	PE        string  `yaml:"pe"`
}

// Load reads and parses a model spec file.
func Load(path string) (*ModelSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model spec: %w", err)
	}

	var spec ModelSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing model spec %s: %w", path, err)
	}
	return &spec, nil
}

// ToConfig converts the YAML spec to a transformer configuration, filling in
// the defaults for fields left unset.
func (s *ModelSpec) ToConfig() nn.Config {
	m := s.Model
	cfg := nn.NewConfig(m.DInput, m.DModel, m.DOutput, m.Q, m.V, m.Heads, m.SeqLen, m.Layers)

	if m.Dropout > 0 {
		cfg.Dropout = m.Dropout
	}
	if m.FFNDim > 0 {
		cfg.FFNDim = m.FFNDim
	}
	if m.ChunkMode != "" {
		cfg.ChunkMode = m.ChunkMode
	}
	if m.ChunkSize > 0 {
		cfg.ChunkSize = m.ChunkSize
	}
	if m.PE != "" {
		cfg.PE = m.PE
	}
	return cfg
}
