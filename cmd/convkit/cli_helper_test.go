package main

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}

// execCLI runs a fresh root with the given subcommand so flag state never
// leaks between tests.
func execCLI(t *testing.T, sub *cobra.Command, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv(envPrefix+"_CONFIG_PATH", "")

	root := &cobra.Command{
		Use: "convkit",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd)
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	addRootFlags(root)
	root.AddCommand(sub)

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err = root.Execute()
	return stripANSI(out.String()), stripANSI(errOut.String()), err
}
