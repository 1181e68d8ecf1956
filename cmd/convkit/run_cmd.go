package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"github.com/webtoolkit/convkit/internal/blobref"
	"github.com/webtoolkit/convkit/internal/tools"
	"github.com/webtoolkit/convkit/internal/widget"
)

func init() {
	rootCmd.AddCommand(newRunCmd())
}

type runFlags struct {
	sets    []string
	moves   []string
	removes []uint64
	text    string
	quiet   bool
}

func newRunCmd() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run <tool> [files or globs...]",
		Short: "Run a tool on files and save the result",
		Example: `  convkit run combine-pdf a.pdf b.pdf c.pdf --move 2:0
  convkit run compress-pdf report.pdf --set level=high
  convkit run image-to-pdf 'scans/**/*.jpg'
  convkit run paraphraser --text "Some text" --set mode=shorter`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTool(cmd, args[0], args[1:], f)
		},
	}

	cmd.Flags().StringArrayVar(&f.sets, "set", nil, "Tool option as key=value (repeatable)")
	cmd.Flags().StringArrayVar(&f.moves, "move", nil, "Reorder staged files, from:to zero-based (repeatable)")
	cmd.Flags().Uint64SliceVar(&f.removes, "remove", nil, "Remove a staged file by its ID before submitting")
	cmd.Flags().StringVar(&f.text, "text", "", "Text input for text tools, - reads stdin")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "Do not print text results")
	return cmd
}

func runTool(cmd *cobra.Command, name string, patterns []string, f runFlags) error {
	cfg, err := appConfig()
	if err != nil {
		return err
	}

	s, err := newSession(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.Close()

	tool, ok := s.catalog.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown tool %q, see `convkit tools`", name)
	}

	set, err := tools.ParseOptions(f.sets)
	if err != nil {
		return err
	}
	if f.text != "" {
		text, err := readText(cmd, f.text)
		if err != nil {
			return err
		}
		set["text"] = text
	}

	wcfg, err := tool.WidgetConfig(set)
	if err != nil {
		return err
	}

	paths, err := expandPaths(patterns)
	if err != nil {
		return err
	}
	candidates, err := widget.CandidatesFromPaths(cmd.Context(), paths)
	if err != nil {
		return err
	}
	if err := tool.CheckInput(len(candidates), wcfg.Params); err != nil {
		return err
	}

	cmd.SilenceUsage = true

	w, err := s.newWidget(wcfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer w.Close()

	if err := stage(w, candidates); err != nil {
		return err
	}
	for _, id := range f.removes {
		if err := w.RemoveFile(id); err != nil {
			return err
		}
	}
	for _, m := range f.moves {
		from, to, err := parseMove(m)
		if err != nil {
			return err
		}
		if err := w.Reorder(from, to); err != nil {
			return err
		}
	}

	for _, pf := range w.Files() {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s %s\n", gray.Render(fmt.Sprintf("#%d", pf.ID)), pf.Name, lightGray.Render(pf.MIMEType))
	}

	res, err := w.Submit(cmd.Context())
	if err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("%s: %s", tool.Name, res.Error)
	}

	path, err := s.save(res)
	if err != nil {
		return err
	}

	if tool.ResultField != "" && !f.quiet {
		if err := printText(cmd, res.Ref); err != nil {
			return err
		}
	}
	fmt.Fprintln(cmd.ErrOrStderr(), green.Render(res.Status))
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", gray.Render("Saved"), cyan.Render(path))
	return nil
}

// stage adds candidates in order. Rejected files are reported and skipped; the
// run stops only when nothing could be staged.
func stage(w *widget.Widget, candidates []*widget.Candidate) error {
	if len(candidates) == 0 {
		return nil
	}
	if !w.Config().Multi && len(candidates) > 1 {
		slog.Warn("tool takes one file, extra files ignored", "tool", w.Config().Name, "given", len(candidates))
	}

	added, err := w.AddFiles(candidates)
	if err != nil && added == 0 {
		return err
	}
	if err != nil {
		slog.Warn("some files were not staged", "tool", w.Config().Name, "staged", added, "error", err)
	}
	return nil
}

// expandPaths resolves glob patterns. Plain paths are kept as given so a
// missing file surfaces as a stat error rather than an empty match.
func expandPaths(patterns []string) ([]string, error) {
	var out []string
	for _, p := range patterns {
		if !hasMeta(p) {
			out = append(out, p)
			continue
		}
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("pattern %q matched no files", p)
		}
		out = append(out, matches...)
	}
	return out, nil
}

func hasMeta(p string) bool {
	return strings.ContainsAny(filepath.ToSlash(p), "*?[{")
}

func parseMove(s string) (int, int, error) {
	a, b, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("move %q: expected from:to", s)
	}
	from, err1 := strconv.Atoi(strings.TrimSpace(a))
	to, err2 := strconv.Atoi(strings.TrimSpace(b))
	if err := errors.Join(err1, err2); err != nil {
		return 0, 0, fmt.Errorf("move %q: %w", s, err)
	}
	return from, to, nil
}

func readText(cmd *cobra.Command, v string) (string, error) {
	if v != "-" {
		return v, nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func printText(cmd *cobra.Command, ref *blobref.Ref) error {
	data, err := ref.Bytes()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
