package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/webtoolkit/convkit/internal/blobref"
	"github.com/webtoolkit/convkit/internal/config"
	"github.com/webtoolkit/convkit/internal/convsdk"
	"github.com/webtoolkit/convkit/internal/notify"
	"github.com/webtoolkit/convkit/internal/tools"
	"github.com/webtoolkit/convkit/internal/widget"
)

// session owns everything one command needs to drive a widget.
type session struct {
	cfg      *config.Config
	catalog  *tools.Catalog
	refs     *blobref.Registry
	notifier *notify.Console
}

func newSession(cfg *config.Config, errOut io.Writer) (*session, error) {
	catalog := tools.NewCatalog()
	if cfg.ToolsFile != "" {
		if err := catalog.LoadOverrides(cfg.ToolsFile); err != nil {
			return nil, err
		}
	}

	refs, err := blobref.NewRegistry("")
	if err != nil {
		return nil, err
	}

	return &session{
		cfg:      cfg,
		catalog:  catalog,
		refs:     refs,
		notifier: notify.NewConsole(errOut),
	}, nil
}

func (s *session) newWidget(wcfg widget.Config, errOut io.Writer) (*widget.Widget, error) {
	spin := notify.NewSpinner(errOut, "Processing...")
	deps := widget.Deps{
		Notifier:  s.notifier,
		Indicator: spin,
		Refs:      s.refs,
	}
	if wcfg.Endpoint != "" {
		client, err := convsdk.New(s.cfg.ServerURL)
		if err != nil {
			return nil, err
		}
		client.SetProgress(func(sent, total int64) {
			switch {
			case total <= 0 || sent >= total:
				spin.SetMessage("Processing...")
			default:
				spin.SetMessage(fmt.Sprintf("Uploading... %d%%", sent*100/total))
			}
		})
		deps.Transport = client
	}
	return widget.New(wcfg, deps)
}

// save copies the result into the download directory and returns its path.
func (s *session) save(res *widget.SubmissionResult) (string, error) {
	path, err := res.Ref.SaveTo(s.cfg.DownloadDir, res.FileName)
	if err != nil {
		return "", fmt.Errorf("save result: %w", err)
	}
	slog.Debug("result saved", "path", path, "ref", res.Ref.URL)
	return path, nil
}

func (s *session) Close() {
	s.notifier.Close()
	if err := s.refs.Close(); err != nil {
		slog.Warn("release temporary results", "error", err)
	}
}
