package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/webtoolkit/convkit/internal/version"
)

func init() {
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print ConvKit version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := version.DetailedWithApp()
			if short {
				v = version.ShortWithApp()
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), v)
			return err
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print only the version and revision")
	return cmd
}
