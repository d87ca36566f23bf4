// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

// Package pptx2md converts presentations into Markdown in two stages: pages
// of shapes are first normalized into serializable slide records, and the
// records are then rendered as Markdown.
package pptx2md

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	// PrioritySpecific is for format-specific providers. Lower values are
	// tried first.
	PrioritySpecific = 0.0

	// DefaultImageDir is where graphics are exported unless configured otherwise.
	DefaultImageDir = "images"
)

type registeredProvider struct {
	provider DocumentProvider
	priority float64
	name     string
}

// Converter is the presentation-to-markdown engine. It owns the provider
// registry and runs the build and render stages.
type Converter struct {
	providers []registeredProvider
	imageDir  string
	logger    *slog.Logger
	exporter  ImageExporter
}

// New creates a new Converter with the given options.
func New(opts ...Option) *Converter {
	c := &Converter{imageDir: DefaultImageDir}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.enableBuiltins()
	return c
}

// RegisterProvider adds a document provider with the given priority.
// Lower priority values are tried first.
func (c *Converter) RegisterProvider(name string, p DocumentProvider, priority float64) {
	c.providers = append(c.providers, registeredProvider{
		provider: p,
		priority: priority,
		name:     name,
	})
	sort.SliceStable(c.providers, func(i, j int) bool {
		return c.providers[i].priority < c.providers[j].priority
	})
}

// enableBuiltins registers all built-in providers.
func (c *Converter) enableBuiltins() {
	c.RegisterProvider("pptx", NewPptxProvider(), PrioritySpecific)
}

// Open picks a provider for the file at path and opens it.
func (c *Converter) Open(path string) (Document, error) {
	info, err := streamInfoFor(path)
	if err != nil {
		return nil, err
	}

	var failed []FailedOpenAttempt
	for _, rp := range c.providers {
		if !rp.provider.Accepts(info) {
			continue
		}
		doc, err := rp.provider.Open(path)
		if err != nil {
			failed = append(failed, FailedOpenAttempt{Provider: rp.name, Err: err})
			continue
		}
		c.logger.Debug("opened document", "path", path, "provider", rp.name, "mime", info.MIMEType)
		return doc, nil
	}

	if len(failed) > 0 {
		return nil, &OpenError{Attempts: failed}
	}
	return nil, &UnsupportedFormatError{
		Extension: info.Extension,
		MIMEType:  info.MIMEType,
	}
}

// streamInfoFor builds StreamInfo for a local file, sniffing its MIME type.
func streamInfoFor(path string) (StreamInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return StreamInfo{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	info := StreamInfo{
		Extension: strings.ToLower(filepath.Ext(path)),
		Filename:  filepath.Base(path),
		LocalPath: path,
	}
	if mt, err := mimetype.DetectReader(f); err == nil && !mt.Is("application/octet-stream") {
		info.MIMEType = mt.String()
	}
	return info, nil
}

// Extract opens the presentation at path and builds its slide records,
// exporting graphics into the image directory. The document is closed
// without saving when done.
func (c *Converter) Extract(path string) (slides []SlideRecord, err error) {
	c.logger.Info("processing file", "path", path)

	doc, err := c.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close document: %w", cerr)
		}
	}()

	exporter := c.exporter
	if exporter == nil {
		if e, ok := doc.(ImageExporter); ok {
			exporter = e
		}
	}

	slides, err = NewBuilder(exporter, c.imageDir, c.logger).Build(doc)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", filepath.Base(path), err)
	}
	return slides, nil
}

// Render writes slides as Markdown to w.
func (c *Converter) Render(w io.Writer, slides []SlideRecord) error {
	return NewRenderer(c.logger).Render(w, slides)
}

// Convert runs both stages for the presentation at path.
func (c *Converter) Convert(path string, w io.Writer) error {
	slides, err := c.Extract(path)
	if err != nil {
		return err
	}
	return c.Render(w, slides)
}
