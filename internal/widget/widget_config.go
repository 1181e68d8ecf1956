package widget

import (
	"errors"
	"maps"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/webtoolkit/convkit/internal/utils"
)

const (
	DefaultMaxFileSize  = 16 * utils.MiB
	DefaultMaxTotalSize = 100 * utils.MiB
	DefaultFileName     = "web_toolkit_result"
)

// Config describes one tool page. Every tool is a Config value, never a new
// implementation.
type Config struct {
	Name     string
	Endpoint string

	// FileField is the multipart field carrying the staged files. Empty means
	// the tool takes no files (text-only tools).
	FileField string

	// Accepted inputs. A candidate passes when it matches any of them; with all
	// three empty every type is accepted.
	AcceptTypes    mapset.Set[string]
	AcceptPrefixes []string
	AcceptExts     mapset.Set[string]
	AcceptLabel    string // shown in the rejection message, e.g. "JPG or PNG"

	Multi    bool
	MinFiles int

	MaxFileSize  int64
	MaxTotalSize int64

	// Params are sent as scalar form fields with every submission.
	Params map[string]string

	// ResultField names the JSON string field of a text reply. Empty means the
	// reply body is the result itself.
	ResultField string

	DefaultName    string
	DefaultNameFor func(files []PendingFile) string

	Local LocalFunc

	IdleStatus     string
	SuccessMessage string
}

func (c *Config) Validate() error {
	if c.Name == "" {
		return errors.New("widget config: name is required")
	}
	if c.Endpoint == "" && c.Local == nil {
		return errors.New("widget config: endpoint or local transform is required")
	}
	if c.MinFiles < 0 {
		return errors.New("widget config: min files must not be negative")
	}
	if c.MinFiles > 1 && !c.Multi {
		return errors.New("widget config: single-file widget cannot require more than one file")
	}
	if c.MinFiles > 0 && c.FileField == "" && c.Local == nil {
		return errors.New("widget config: file field is required when files are")
	}
	if c.MaxFileSize < 0 || c.MaxTotalSize < 0 {
		return errors.New("widget config: size limits must not be negative")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.MaxFileSize == 0 {
		c.MaxFileSize = DefaultMaxFileSize
	}
	if c.MaxTotalSize == 0 {
		c.MaxTotalSize = DefaultMaxTotalSize
	}
	if c.IdleStatus == "" {
		c.IdleStatus = "Choose a file to begin."
	}
	if c.SuccessMessage == "" {
		c.SuccessMessage = "Done! Your file is ready to download."
	}
	c.Params = maps.Clone(c.Params)
}

// TakesFiles reports whether the widget stages files at all.
func (c *Config) TakesFiles() bool {
	return c.FileField != "" || c.Local != nil
}

// Accepts checks name and media type against the accepted set.
func (c *Config) Accepts(name, mimeType string) bool {
	noTypes := c.AcceptTypes == nil || c.AcceptTypes.Cardinality() == 0
	noExts := c.AcceptExts == nil || c.AcceptExts.Cardinality() == 0
	if noTypes && noExts && len(c.AcceptPrefixes) == 0 {
		return true
	}

	mt := utils.BaseMediaType(mimeType)
	if !noTypes && c.AcceptTypes.Contains(mt) {
		return true
	}
	for _, p := range c.AcceptPrefixes {
		if strings.HasPrefix(mt, p) {
			return true
		}
	}
	return !noExts && c.AcceptExts.Contains(utils.Ext(name))
}

func (c *Config) defaultName(files []PendingFile) string {
	if c.DefaultNameFor != nil {
		if n := c.DefaultNameFor(files); n != "" {
			return n
		}
	}
	if c.DefaultName != "" {
		return c.DefaultName
	}
	return DefaultFileName
}
