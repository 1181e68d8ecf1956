package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/webtoolkit/convkit/internal/utils"
)

var (
	home, _            = os.UserHomeDir()
	DefaultConfigPath  = filepath.Join(home, ".convkit", "config.json")
	DefaultLogFilePath = filepath.Join(home, ".convkit", "logs", "convkit.log")
	DefaultDownloadDir = filepath.Join(home, "Downloads")
	DefaultServerURL   = "http://localhost:5000"
)

type Config struct {
	ServerURL   string `json:"server_url"`
	DownloadDir string `json:"download_dir"`
	ToolsFile   string `json:"tools_file,omitempty"` // optional YAML of per-tool overrides
	Path        string `json:"-"`
}

// Validate normalizes paths and checks the server URL.
func (c *Config) Validate() error {
	var err error

	if c.ServerURL == "" {
		return errors.New("server url is required")
	}
	if err := utils.ValidateServerURL(c.ServerURL); err != nil {
		return fmt.Errorf("server url: %w", err)
	}

	if c.DownloadDir == "" {
		return errors.New("download dir is required")
	}
	if c.DownloadDir, err = utils.ResolvePath(c.DownloadDir); err != nil {
		return fmt.Errorf("download dir: %w", err)
	}

	if c.ToolsFile != "" {
		if c.ToolsFile, err = utils.ResolvePath(c.ToolsFile); err != nil {
			return fmt.Errorf("tools file: %w", err)
		}
	}

	if c.Path != "" {
		if c.Path, err = utils.ResolvePath(c.Path); err != nil {
			return fmt.Errorf("config path: %w", err)
		}
	}
	return nil
}

func (c *Config) Save() error {
	if c.Path == "" {
		return errors.New("config path is required")
	}
	if err := utils.EnsureParent(c.Path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.Path, data, 0o644)
}

func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	cfg.Path = path
	return &cfg, nil
}
