package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/webtoolkit/convkit/internal/config"
	"github.com/webtoolkit/convkit/internal/utils"
	"github.com/webtoolkit/convkit/internal/version"
)

var (
	home, _        = os.UserHomeDir()
	configFileName = "config"
	envPrefix      = "CONVKIT"
)

var rootCmd = &cobra.Command{
	Use:     "convkit",
	Short:   "ConvKit file conversion toolkit",
	Version: version.Detailed(),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
}

func init() {
	addRootFlags(rootCmd)
}

func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().SortFlags = false
	cmd.PersistentFlags().StringP("config", "c", config.DefaultConfigPath, "ConvKit config file")
	cmd.PersistentFlags().StringP("server", "s", config.DefaultServerURL, "Conversion server URL")
	cmd.PersistentFlags().StringP("out", "o", config.DefaultDownloadDir, "Directory for downloaded results")
	cmd.PersistentFlags().String("tools-file", "", "YAML file with per-tool overrides")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Debug logging on the console")
}

func main() {
	logFile := config.DefaultLogFilePath
	if err := utils.EnsureParent(logFile); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create log directory: %v\n", err)
		os.Exit(1)
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	// console gets info and up unless --verbose, the file always gets everything
	consoleLevel := new(slog.LevelVar)
	consoleLevel.Set(slog.LevelInfo)
	if verboseFlag(os.Args[1:]) {
		consoleLevel.Set(slog.LevelDebug)
	}

	stderrHandler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      consoleLevel,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})
	fileHandler := slog.NewTextHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})
	slog.SetDefault(slog.New(utils.NewMultiLogHandler(stderrHandler, fileHandler)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func verboseFlag(args []string) bool {
	for _, a := range args {
		if a == "-v" || a == "--verbose" {
			return true
		}
	}
	return false
}

func loadConfig(cmd *cobra.Command) error {
	// a .env next to the working directory may carry CONVKIT_* variables
	_ = godotenv.Load()

	v := viper.GetViper()
	v.SetConfigFile(resolveConfigPath(cmd))
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		_, ok := err.(viper.ConfigFileNotFoundError)
		if !enoent && !ok {
			return fmt.Errorf("config read '%s': %w", v.ConfigFileUsed(), err)
		}
	}

	v.BindPFlag("server_url", cmd.Flags().Lookup("server"))
	v.BindPFlag("download_dir", cmd.Flags().Lookup("out"))
	v.BindPFlag("tools_file", cmd.Flags().Lookup("tools-file"))

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	return nil
}

// appConfig builds and validates the effective configuration after loadConfig ran.
func appConfig() (*config.Config, error) {
	cfg := &config.Config{
		Path:        viper.ConfigFileUsed(),
		ServerURL:   viper.GetString("server_url"),
		DownloadDir: viper.GetString("download_dir"),
		ToolsFile:   viper.GetString("tools_file"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfigCandidates() []string {
	return []string{
		filepath.Join(home, ".convkit", "config.json"),
		filepath.Join(home, ".config", "convkit", "config.json"),
	}
}
