// Package tools holds the catalog of tool pages. Each tool is plain data that
// turns into a widget.Config.
package tools

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/webtoolkit/convkit/internal/utils"
	"github.com/webtoolkit/convkit/internal/widget"
	"gopkg.in/yaml.v3"
)

var (
	pdfTypes   = []string{"application/pdf"}
	imageTypes = []string{"image/png", "image/jpeg"}
	photoTypes = []string{"image/png", "image/jpeg", "image/webp"}
	docTypes   = []string{
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
	imageTargets = []string{"image/png", "image/jpeg", "image/webp", "image/bmp", "image/tiff", "image/gif"}
)

func builtins() []*Tool {
	return []*Tool{
		{
			Name:        "combine-pdf",
			Title:       "Combine PDF",
			Endpoint:    "/gabung-pdf/combine",
			FileField:   "pdfs[]",
			AcceptTypes: pdfTypes,
			AcceptExts:  []string{"pdf"},
			AcceptLabel: "PDF",
			Multi:       true,
			MinFiles:    2,
			DefaultName: "gabung_web_toolkit.pdf",
			IdleStatus:  "Choose at least two PDF files.",
		},
		{
			Name:        "compress-pdf",
			Title:       "Compress PDF",
			Endpoint:    "/kompres-pdf/process",
			FileField:   "file",
			AcceptTypes: pdfTypes,
			AcceptLabel: "PDF",
			MinFiles:    1,
			Options: []Option{
				{Key: "level", Default: "medium", Choices: []string{"low", "medium", "high"}, Help: "compression level"},
			},
			DefaultName: "compressed.pdf",
		},
		{
			Name:        "image-to-pdf",
			Title:       "Image to PDF",
			Endpoint:    "/image-to-pdf/convert",
			FileField:   "images[]",
			AcceptTypes: imageTypes,
			AcceptLabel: "JPG or PNG",
			Multi:       true,
			MinFiles:    1,
			DefaultName: "gambar_pdf_web_toolkit.pdf",
		},
		{
			Name:        "pdf-to-image",
			Title:       "PDF to Image",
			Endpoint:    "/pdf-ke-gambar/process",
			FileField:   "file",
			AcceptTypes: pdfTypes,
			AcceptLabel: "PDF",
			MinFiles:    1,
			Options: []Option{
				{Key: "format", Default: "jpeg", Choices: []string{"jpeg", "png"}, Help: "page image format"},
			},
			DefaultName: "hasil_gambar.zip",
		},
		{
			Name:        "pdf-to-docx",
			Title:       "PDF to Word",
			Endpoint:    "/pdf-ke-docx/process",
			FileField:   "file",
			AcceptTypes: pdfTypes,
			AcceptLabel: "PDF",
			MinFiles:    1,
			DefaultName: "pdf_docx_web_toolkit.docx",
		},
		{
			Name:        "docx-to-pdf",
			Title:       "Word to PDF",
			Endpoint:    "/docx-ke-pdf/process",
			FileField:   "file",
			AcceptTypes: docTypes,
			AcceptExts:  []string{"doc", "docx"},
			AcceptLabel: ".doc or .docx",
			MinFiles:    1,
			NameFor: func(files []widget.PendingFile, _ map[string]string) string {
				if len(files) == 0 {
					return ""
				}
				return utils.Stem(files[0].Name) + ".pdf"
			},
			DefaultName: "docx_pdf_web_toolkit.pdf",
		},
		{
			Name:        "xlsx-to-pdf",
			Title:       "Excel to PDF",
			Endpoint:    "/xlsx-ke-pdf/process",
			FileField:   "file",
			AcceptExts:  []string{"xls", "xlsx", "ods"},
			AcceptLabel: ".xls, .xlsx or .ods",
			MinFiles:    1,
			DefaultName: "xlsx_pdf_web_toolkit.pdf",
		},
		{
			Name:        "pdf-to-xlsx",
			Title:       "PDF to Excel",
			Endpoint:    "/pdf-to-xlsx/process",
			FileField:   "file",
			AcceptTypes: pdfTypes,
			AcceptLabel: "PDF",
			MinFiles:    1,
			Options: []Option{
				{Key: "prefer_stream", Default: "0", Choices: []string{"0", "1"}, Help: "use stream table detection"},
				{Key: "merge_tables", Default: "0", Choices: []string{"0", "1"}, Help: "merge tables into one sheet"},
			},
			DefaultName: "pdf_xlsx_web_toolkit.xlsx",
		},
		{
			Name:           "ocr",
			Title:          "OCR",
			Endpoint:       "/ocr/convert",
			FileField:      "file",
			AcceptTypes:    pdfTypes,
			AcceptPrefixes: []string{"image/"},
			AcceptLabel:    "PDF or an image",
			MinFiles:       1,
			DefaultName:    "ocr_web_toolkit.txt",
		},
		{
			Name:        "sharpen",
			Title:       "Sharpen Image",
			Endpoint:    "/pertajam-gambar/process",
			FileField:   "image",
			AcceptTypes: photoTypes,
			AcceptLabel: "PNG, JPG or WEBP",
			MinFiles:    1,
			Options: []Option{
				{Key: "mode", Default: "classic", Choices: []string{"classic", "ai"}, Help: "sharpening method"},
			},
			DefaultName: "pertajam_web_toolkit.png",
		},
		{
			Name:        "upscale",
			Title:       "Upscale Image",
			Endpoint:    "/peningkatan-hd/process",
			FileField:   "image",
			AcceptTypes: photoTypes,
			AcceptLabel: "PNG, JPG or WEBP",
			MinFiles:    1,
			Options: []Option{
				{Key: "scale", Default: "4", Choices: []string{"2", "3", "4"}, Help: "upscale factor"},
			},
			DefaultName: "perbesar_web_toolkit.png",
		},
		{
			Name:           "convert-image",
			Title:          "Convert Image",
			Endpoint:       "/convert-image/process",
			FileField:      "image",
			AcceptPrefixes: []string{"image/"},
			AcceptLabel:    "an image",
			MinFiles:       1,
			Options: []Option{
				{Key: "target", Default: "image/png", Choices: imageTargets, Help: "output media type"},
				{Key: "quality", Default: "90", Min: 1, Max: 100, Help: "lossy quality"},
			},
			NameFor: convertName,
			Local:   convertImage,
		},
		{
			Name:        "compress-image",
			Title:       "Compress Image",
			AcceptTypes: imageTypes,
			AcceptLabel: "JPG or PNG",
			MinFiles:    1,
			Options: []Option{
				{Key: "quality", Default: "85", Min: 10, Max: 100, Help: "JPEG quality"},
			},
			DefaultName: "kompres_gambar_web_toolkit.jpg",
			Local:       compressImage,
		},
		{
			Name:        "resize-image",
			Title:       "Resize Image",
			AcceptTypes: imageTypes,
			AcceptLabel: "JPG or PNG",
			MinFiles:    1,
			Options: []Option{
				{Key: "percent", Default: "80", Min: 1, Max: 100, Help: "new size in percent"},
			},
			DefaultName: "perkecil_web_toolkit.png",
			Local:       resizeImage,
		},
		{
			Name:        "summarizer",
			Title:       "Summarizer",
			Endpoint:    "/summarizer/process",
			FileField:   "file",
			AcceptTypes: []string{"application/pdf", docTypes[1], "text/plain"},
			AcceptExts:  []string{"pdf", "docx", "txt"},
			AcceptLabel: ".pdf, .docx or .txt",
			Options: []Option{
				{Key: "text", Help: "text to summarize"},
				{Key: "sentences", Default: "5", Min: 1, Max: 20, Help: "sentences in the summary"},
			},
			TextInput:   "text",
			ResultField: "summary",
			DefaultName: "rangkum_web_toolkit.txt",
			IdleStatus:  "Enter text or choose a file.",
		},
		{
			Name:     "paraphraser",
			Title:    "Paraphraser",
			Endpoint: "/paraphraser/process",
			Options: []Option{
				{Key: "text", Required: true, Help: "text to rewrite"},
				{Key: "mode", Default: "natural", Choices: []string{"natural", "longer", "shorter"}, Help: "rewrite style"},
			},
			TextInput:   "text",
			ResultField: "paraphrased",
			DefaultName: "tulis_web_toolkit.txt",
			IdleStatus:  "Enter text to rewrite.",
		},
	}
}

// Catalog is the registry of tools by name.
type Catalog struct {
	mu    sync.RWMutex
	tools map[string]*Tool
	order []string
}

// NewCatalog returns a catalog with every built-in tool.
func NewCatalog() *Catalog {
	c := &Catalog{tools: make(map[string]*Tool)}
	for _, t := range builtins() {
		c.tools[t.Name] = t
		c.order = append(c.order, t.Name)
	}
	return c
}

func (c *Catalog) Lookup(name string) (*Tool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tools[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// All returns the tools in catalog order.
func (c *Catalog) All() []*Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Tool, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.tools[name])
	}
	return out
}

// Override points a deployed tool at another endpoint without a rebuild. Size
// limits are part of the tool definition and cannot be overridden.
type Override struct {
	Endpoint string `yaml:"endpoint"`
}

type overrideFile struct {
	Tools map[string]Override `yaml:"tools"`
}

// LoadOverrides applies a YAML file of per-tool endpoint overrides:
//
//	tools:
//	  compress-pdf:
//	    endpoint: /v2/kompres-pdf/process
//
// Unknown tools and unknown keys are rejected and nothing is applied.
func (c *Catalog) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("tool overrides: %w", err)
	}

	var f overrideFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("tool overrides %q: %w", path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for name := range f.Tools {
		if _, ok := c.tools[name]; !ok {
			return fmt.Errorf("tool overrides %q: unknown tool %q", path, name)
		}
	}
	for name, o := range f.Tools {
		if o.Endpoint == "" {
			continue
		}
		next := *c.tools[name]
		next.Endpoint = o.Endpoint
		c.tools[name] = &next
	}
	return nil
}
