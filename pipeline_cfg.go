// Copyright 2025 The DQF Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dqfcore

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// PipelineConfig is the startup configuration of one pipeline: its identity,
// log level, backing data source, and output path roots.
type PipelineConfig struct {
	PipelineName     string        `yaml:"pipeline_name"`
	LogLevel         string        `yaml:"log_level,omitempty"`
	DataSource       DataSource    `yaml:"data_source"`
	Paths            PipelinePaths `yaml:"paths"`
	QuarantineFormat string        `yaml:"quarantine_format,omitempty"`
}

type PipelinePaths struct {
	ReportPath     string `yaml:"report_path"`
	QuarantinePath string `yaml:"quarantine_path"`
}

// SlogLevel maps the configured log_level onto a slog.Level, defaulting to
// info for unknown values.
func (c *PipelineConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func LoadPipelineConfig(fileName string) (*PipelineConfig, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var cfg PipelineConfig
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse pipeline config %s: %w", fileName, err)
	}

	if cfg.PipelineName == "" {
		cfg.PipelineName = "dqf"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Paths.ReportPath == "" {
		cfg.Paths.ReportPath = "reports"
	}
	if cfg.Paths.QuarantinePath == "" {
		cfg.Paths.QuarantinePath = "quarantine"
	}
	if cfg.QuarantineFormat == "" {
		cfg.QuarantineFormat = "native"
	}

	return &cfg, nil
}
