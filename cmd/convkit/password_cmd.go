package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/webtoolkit/convkit/internal/passgen"
)

func init() {
	rootCmd.AddCommand(newPasswordCmd())
}

func newPasswordCmd() *cobra.Command {
	opts := passgen.DefaultOptions()
	var noUpper, noLower, noDigits, noSymbols bool

	cmd := &cobra.Command{
		Use:   "password",
		Short: "Generate a random password",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Upper = !noUpper
			opts.Lower = !noLower
			opts.Digits = !noDigits
			opts.Symbols = !noSymbols

			pw, err := passgen.Generate(opts)
			if err != nil {
				return err
			}

			entropy := passgen.Entropy(opts)
			strength := passgen.StrengthOf(entropy)
			label := green.Render(strength.String())
			if strength < passgen.Fair {
				label = red.Render(strength.String())
			}

			fmt.Fprintln(cmd.OutOrStdout(), pw)
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", gray.Render(fmt.Sprintf("%.1f bit entropy,", entropy)), label)
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.Length, "length", "l", passgen.DefaultLength, "Password length (1-256)")
	cmd.Flags().BoolVar(&noUpper, "no-upper", false, "Exclude uppercase letters")
	cmd.Flags().BoolVar(&noLower, "no-lower", false, "Exclude lowercase letters")
	cmd.Flags().BoolVar(&noDigits, "no-digits", false, "Exclude digits")
	cmd.Flags().BoolVar(&noSymbols, "no-symbols", false, "Exclude symbols")
	return cmd
}
