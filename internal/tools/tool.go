package tools

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/webtoolkit/convkit/internal/widget"
)

// ParseOptions turns key=value pairs into a map. Later pairs win.
func ParseOptions(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, optionError(p, "expected key=value")
		}
		out[k] = v
	}
	return out, nil
}

// Option is a scalar form field of a tool.
type Option struct {
	Key      string
	Default  string
	Choices  []string // allowed values, empty means free text or a numeric range
	Min, Max int      // numeric range, used when Max > 0
	Required bool
	Help     string
}

func (o Option) numeric() bool {
	return o.Max > 0
}

func (o Option) check(v string) error {
	switch {
	case len(o.Choices) > 0:
		if !slices.Contains(o.Choices, v) {
			return optionError(o.Key, fmt.Sprintf("must be one of %s", strings.Join(o.Choices, ", ")))
		}
	case o.numeric():
		n, err := strconv.Atoi(v)
		if err != nil || n < o.Min || n > o.Max {
			return optionError(o.Key, fmt.Sprintf("must be a number from %d to %d", o.Min, o.Max))
		}
	}
	return nil
}

func optionError(key, msg string) error {
	return &widget.ValidationError{Reason: widget.ReasonOption, File: key, Message: msg}
}

// Tool is the catalog entry of one tool page.
type Tool struct {
	Name     string
	Title    string
	Endpoint string

	FileField      string
	AcceptTypes    []string
	AcceptPrefixes []string
	AcceptExts     []string
	AcceptLabel    string
	Multi          bool
	MinFiles       int
	MaxFileSize    int64
	MaxTotalSize   int64

	Options []Option

	ResultField string
	DefaultName string

	// NameFor derives the download name from the staged files and options.
	NameFor func(files []widget.PendingFile, params map[string]string) string

	// Local is the in-process transform, nil for server-only tools.
	Local widget.LocalFunc

	// TextInput names the option that carries free text, if any.
	TextInput string

	IdleStatus string
}

// Option returns the option with key.
func (t *Tool) Option(key string) (Option, bool) {
	i := slices.IndexFunc(t.Options, func(o Option) bool { return o.Key == key })
	if i < 0 {
		return Option{}, false
	}
	return t.Options[i], true
}

// ResolveOptions checks set against the tool's options and fills defaults.
// Unknown keys and values outside the allowed set are validation errors.
func (t *Tool) ResolveOptions(set map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(t.Options))
	for _, k := range slices.Sorted(maps.Keys(set)) {
		o, ok := t.Option(k)
		if !ok {
			return nil, optionError(k, fmt.Sprintf("unknown option for %s", t.Name))
		}
		if err := o.check(set[k]); err != nil {
			return nil, err
		}
		out[k] = set[k]
	}
	for _, o := range t.Options {
		if _, ok := out[o.Key]; ok {
			continue
		}
		if o.Required {
			return nil, optionError(o.Key, "is required")
		}
		if o.Default != "" {
			out[o.Key] = o.Default
		}
	}
	return out, nil
}

// CheckInput verifies a submission has something to work on: tools with an
// optional file and a text field need one of the two.
func (t *Tool) CheckInput(files int, params map[string]string) error {
	if t.TextInput == "" || t.MinFiles > 0 {
		return nil
	}
	if files > 0 || strings.TrimSpace(params[t.TextInput]) != "" {
		return nil
	}
	msg := "Please enter text first."
	if t.FileField != "" {
		msg = "Please enter text or upload a file."
	}
	return &widget.ValidationError{Reason: widget.ReasonCount, Message: msg}
}

// WidgetConfig resolves set and returns the widget configuration of the tool.
func (t *Tool) WidgetConfig(set map[string]string) (widget.Config, error) {
	params, err := t.ResolveOptions(set)
	if err != nil {
		return widget.Config{}, err
	}

	cfg := widget.Config{
		Name:           t.Name,
		Endpoint:       t.Endpoint,
		FileField:      t.FileField,
		AcceptPrefixes: slices.Clone(t.AcceptPrefixes),
		AcceptLabel:    t.AcceptLabel,
		Multi:          t.Multi,
		MinFiles:       t.MinFiles,
		MaxFileSize:    t.MaxFileSize,
		MaxTotalSize:   t.MaxTotalSize,
		Params:         params,
		ResultField:    t.ResultField,
		DefaultName:    t.DefaultName,
		IdleStatus:     t.IdleStatus,
	}
	if len(t.AcceptTypes) > 0 {
		cfg.AcceptTypes = mapset.NewSet(t.AcceptTypes...)
	}
	if len(t.AcceptExts) > 0 {
		cfg.AcceptExts = mapset.NewSet(t.AcceptExts...)
	}
	if t.NameFor != nil {
		nameFor := t.NameFor
		cfg.DefaultNameFor = func(files []widget.PendingFile) string {
			return nameFor(files, params)
		}
	}
	cfg.Local = t.Local
	return cfg, nil
}
