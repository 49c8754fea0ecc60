// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package tspconfig loads the HCL configuration that describes a
// running query: where its events come from, how they are
// partitioned and batched, and where the API and result store listen.
// The pattern tree itself is built in Go and is not part of this
// schema.
package tspconfig

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the top-level shape of a query config file.
type Config struct {
	Events    EventsConfig    `hcl:"events,block"`
	Partition PartitionConfig `hcl:"partition,block"`
	API       APIConfig       `hcl:"api,block"`
	Store     StoreConfig     `hcl:"store,block"`
}

// EventsConfig names the upstream event source.
type EventsConfig struct {
	Path      string `hcl:"path"`
	KeyField  string `hcl:"key_field,optional"`
	HasHeader bool   `hcl:"has_header,optional"`
}

// PartitionConfig bounds the partitioned batching iterator.
type PartitionConfig struct {
	ChunkMaxSize   int `hcl:"chunk_max_size,optional"`
	TotalSizeLimit int `hcl:"total_size_limit,optional"`
}

// APIConfig configures the HTTP status/metrics surface.
type APIConfig struct {
	Listen string `hcl:"listen,optional"`
}

// StoreConfig configures where projected results are persisted.
type StoreConfig struct {
	Path string `hcl:"path,optional"`
}

// DefaultPartitionConfig mirrors the non-partitioned driver: one chunk
// per pull, no meaningful total size cap.
func DefaultPartitionConfig() PartitionConfig {
	return PartitionConfig{ChunkMaxSize: 256, TotalSizeLimit: 1 << 20}
}

// LoadFile reads and decodes an HCL query config from path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tspconfig: failed to read config file: %w", err)
	}
	return Load(data, path)
}

// Load decodes an HCL query config from data, attributing diagnostics
// to filename.
func Load(data []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("tspconfig: failed to parse HCL: %w", diags)
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("tspconfig: failed to decode HCL: %w", diags)
	}

	if cfg.Partition.ChunkMaxSize == 0 && cfg.Partition.TotalSizeLimit == 0 {
		cfg.Partition = DefaultPartitionConfig()
	}
	if cfg.API.Listen == "" {
		cfg.API.Listen = ":8080"
	}

	return &cfg, validate(&cfg)
}

func validate(cfg *Config) error {
	if cfg.Events.Path == "" {
		return diagError("events.path is required")
	}
	if cfg.Partition.ChunkMaxSize <= 0 {
		return diagError("partition.chunk_max_size must be positive")
	}
	if cfg.Partition.TotalSizeLimit <= 0 {
		return diagError("partition.total_size_limit must be positive")
	}
	return nil
}

func diagError(msg string) error {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  "invalid query config",
		Detail:   msg,
	}
}
