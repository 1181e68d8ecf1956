package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/webtoolkit/convkit/internal/qrgen"
)

func init() {
	rootCmd.AddCommand(newQRCmd())
}

func newQRCmd() *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "qr <text>",
		Short: "Render text or a URL as a QR code PNG",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appConfig()
			if err != nil {
				return err
			}

			png, err := qrgen.Generate(strings.Join(args, " "), size)
			if err != nil {
				return err
			}

			s, err := newSession(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			ref, err := s.refs.Acquire(png, "image/png", qrgen.DefaultFileName)
			if err != nil {
				return err
			}
			defer s.refs.Release(ref)

			path, err := ref.SaveTo(cfg.DownloadDir, qrgen.DefaultFileName)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", gray.Render("Saved"), cyan.Render(path))
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "size", qrgen.DefaultSize, "Image size in pixels")
	return cmd
}
