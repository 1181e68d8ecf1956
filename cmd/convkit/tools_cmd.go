package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/webtoolkit/convkit/internal/tools"
	"github.com/webtoolkit/convkit/internal/utils"
	"github.com/webtoolkit/convkit/internal/widget"
)

func init() {
	rootCmd.AddCommand(newToolsCmd())
}

func newToolsCmd() *cobra.Command {
	var showHeaderFlag bool

	cmd := &cobra.Command{
		Use:   "tools [tool]",
		Short: "List the available tools or describe one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appConfig()
			if err != nil {
				return err
			}
			s, err := newSession(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			if showHeaderFlag {
				showHeader(out)
			}
			if len(args) == 0 {
				for _, t := range s.catalog.All() {
					fmt.Fprintf(out, "%-16s %s\n", bold.Render(t.Name), lightGray.Render(t.Title))
				}
				return nil
			}

			t, ok := s.catalog.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown tool %q", args[0])
			}
			describeTool(cmd, t)
			return nil
		},
	}
	cmd.Flags().BoolVar(&showHeaderFlag, "header", false, "Print the banner first")
	return cmd
}

func describeTool(cmd *cobra.Command, t *tools.Tool) {
	out := cmd.OutOrStdout()
	row := func(k, v string) {
		fmt.Fprintf(out, "%s %s\n", gray.Render(fmt.Sprintf("%-10s", k)), v)
	}

	fmt.Fprintln(out, bold.Render(t.Title))
	if t.Endpoint != "" {
		row("endpoint", cyan.Render(t.Endpoint))
	} else {
		row("endpoint", "local")
	}
	if t.FileField != "" || t.Local != nil {
		files := "one file"
		if t.Multi {
			files = fmt.Sprintf("at least %d files", max(t.MinFiles, 1))
		}
		if t.AcceptLabel != "" {
			files += ", " + t.AcceptLabel
		}
		row("input", files)

		maxFile := t.MaxFileSize
		if maxFile == 0 {
			maxFile = widget.DefaultMaxFileSize
		}
		row("max size", utils.FormatBytes(maxFile))
	}
	for _, o := range t.Options {
		v := o.Help
		switch {
		case len(o.Choices) > 0:
			v += " [" + strings.Join(o.Choices, "|") + "]"
		case o.Max > 0:
			v += fmt.Sprintf(" [%d-%d]", o.Min, o.Max)
		}
		if o.Default != "" {
			v += " default " + o.Default
		}
		if o.Required {
			v += red.Render(" required")
		}
		row("--set "+o.Key, v)
	}
}
