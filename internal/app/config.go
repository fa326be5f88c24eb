package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vk/wsgen/internal/cli"
)

// DotfileName is the optional per-workspace settings file, read from the
// workspace root. Flags always win over dotfile values.
const DotfileName = ".wsgen.yaml"

// DefaultTool is used when neither the --tool flag, the WSGEN_BUILD_TOOL
// environment value, nor the dotfile names a build tool.
const DefaultTool = "forge"

// Config holds everything an App instance needs to run. It is assembled once
// in main and threaded explicitly; no component reads ambient state.
type Config struct {
	// WorkspaceDir is the workspace root directory.
	WorkspaceDir string
	// WorkingDir is where the user invoked wsgen; it drives implicit target
	// selection.
	WorkingDir string

	Mode        cli.Mode
	Passthrough []string
	Packages    []string
	Excludes    []string
	Workspace   bool

	Tool      string
	Quiet     bool
	LogLevel  string
	LogFormat string
}

// dotfile mirrors the YAML settings file.
type dotfile struct {
	Tool      string `yaml:"tool"`
	Quiet     bool   `yaml:"quiet"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// NewConfig assembles the final configuration from parsed CLI options, the
// environment-supplied build tool, and the workspace dotfile, in that order
// of precedence.
func NewConfig(opts *cli.Options, workspaceDir, workingDir, envTool string) (*Config, error) {
	if workspaceDir == "" {
		return nil, errors.New("WorkspaceDir is a required configuration field and cannot be empty")
	}

	cfg := &Config{
		WorkspaceDir: workspaceDir,
		WorkingDir:   workingDir,
		Mode:         opts.Mode,
		Passthrough:  opts.Passthrough,
		Packages:     opts.Packages,
		Excludes:     opts.Excludes,
		Workspace:    opts.Workspace,
		Tool:         opts.Tool,
		Quiet:        opts.Quiet,
		LogLevel:     opts.LogLevel,
		LogFormat:    opts.LogFormat,
	}

	df, err := loadDotfile(filepath.Join(workspaceDir, DotfileName))
	if err != nil {
		return nil, err
	}
	if df != nil {
		if cfg.Tool == "" {
			cfg.Tool = df.Tool
		}
		if !cfg.Quiet {
			cfg.Quiet = df.Quiet
		}
		if cfg.LogLevel == "" {
			cfg.LogLevel = df.LogLevel
		}
		if cfg.LogFormat == "" {
			cfg.LogFormat = df.LogFormat
		}
	}

	if cfg.Tool == "" {
		cfg.Tool = envTool
	}
	if cfg.Tool == "" {
		cfg.Tool = DefaultTool
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}

	return cfg, nil
}

func loadDotfile(path string) (*dotfile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var df dotfile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &df, nil
}
