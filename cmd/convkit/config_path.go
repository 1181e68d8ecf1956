package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/webtoolkit/convkit/internal/config"
	"github.com/webtoolkit/convkit/internal/utils"
)

// resolveConfigPath picks the config file, honoring (in order):
// 1) An explicitly set --config flag
// 2) CONVKIT_CONFIG_PATH environment variable
// 3) Existing config files in common locations
// 4) The default path
func resolveConfigPath(cmd *cobra.Command) string {
	if cfgFlag := cmd.Flag("config"); cfgFlag != nil && cfgFlag.Changed {
		return cfgFlag.Value.String()
	}

	if envPath := os.Getenv(envPrefix + "_CONFIG_PATH"); envPath != "" {
		return envPath
	}

	for _, candidate := range defaultConfigCandidates() {
		if utils.FileExists(candidate) {
			return candidate
		}
	}

	return config.DefaultConfigPath
}
