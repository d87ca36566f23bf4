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

package pptx2md

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// PlaceholderTitle is the heading of slides without a title shape.
	PlaceholderTitle = "SLIDE"

	notConvertible = "(TABLE not converted from PowerPoint)"
	bulletMarker   = "-   "
	indentWidth    = 4
)

// Renderer writes SlideRecords as Markdown. It never modifies the records it
// is given, so rendering the same records twice yields the same bytes.
type Renderer struct {
	logger *slog.Logger
}

// NewRenderer creates a Renderer. A nil logger falls back to slog.Default().
func NewRenderer(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{logger: logger}
}

// Render writes the Markdown for slides to w, one slide after the other.
// Output already written stays on w if a later slide fails.
func (r *Renderer) Render(w io.Writer, slides []SlideRecord) error {
	for _, slide := range slides {
		var b strings.Builder
		if err := r.renderSlide(&b, slide); err != nil {
			return err
		}
		if _, err := io.WriteString(w, b.String()); err != nil {
			return fmt.Errorf("write markdown: %w", err)
		}
	}
	return nil
}

// RenderString renders slides into a string.
func (r *Renderer) RenderString(slides []SlideRecord) (string, error) {
	var b strings.Builder
	if err := r.Render(&b, slides); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (r *Renderer) renderSlide(b *strings.Builder, slide SlideRecord) error {
	title, body := splitTitle(slide.Shapes)
	if title == "" {
		title = PlaceholderTitle
	}
	writeBlock(b, "### "+title)

	for _, shape := range body {
		switch {
		case shape.Kind() == KindGraphicObject || shape.Kind() == KindGroup:
			if shape.Kind() == KindGroup {
				r.logger.Debug("rendering group surrogate", "slide", slide.SlideNum, "title", title)
			}
			link, err := graphicLink(shape)
			if err != nil {
				return &RecordError{Slide: slide.SlideNum, Shape: shape.ShapeNum, Reason: err.Error()}
			}
			writeBlock(b, link)

		case shape.Kind() == KindTitleText:
			// A second title-kind shape. Historically these came from tables.
			writeBlock(b, notConvertible)

		case len(shape.Elements) > 0:
			writeBlock(b, RenderList(shape.Elements))

		case strings.TrimSpace(shape.Text()) != "":
			writeBlock(b, strings.TrimSpace(shape.Text()))

		default:
			writeBlock(b, fmt.Sprintf("<!-- sl: %d, shp: %d, type: %s !-->", slide.SlideNum, shape.ShapeNum, shape.ShapeType))
		}
	}
	return nil
}

// writeBlock writes one Markdown block followed by a blank line.
func writeBlock(b *strings.Builder, s string) {
	b.WriteString(s)
	b.WriteString("\n\n")
}

// splitTitle finds the first title shape and returns its text with line
// breaks collapsed, plus a copy of shapes without it.
func splitTitle(shapes []ShapeDescriptor) (string, []ShapeDescriptor) {
	for i, shape := range shapes {
		if shape.Kind() != KindTitleText {
			continue
		}
		body := make([]ShapeDescriptor, 0, len(shapes)-1)
		body = append(body, shapes[:i]...)
		body = append(body, shapes[i+1:]...)
		return collapseLineBreaks(shape.Text()), body
	}
	return "", shapes
}

func collapseLineBreaks(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.TrimSpace(s)
}

// graphicLink returns the Markdown image reference for a graphic or group
// surrogate, preferring the SVG rendering when there is one.
func graphicLink(shape ShapeDescriptor) (string, error) {
	target := shape.ExportedSvgFilename
	if target == "" {
		target = shape.ExportedFilename
	}
	if target == "" {
		return "", fmt.Errorf("%s has no exported filename", shape.ShapeType)
	}
	return fmt.Sprintf("![%s](%s)", escapeAltText(shape.Text()), target), nil
}

// altTextEscaper escapes the characters that would end the alt text of a
// Markdown image early.
var altTextEscaper = strings.NewReplacer(`\`, `\\`, "[", `\[`, "]", `\]`)

// escapeAltText puts shape text on one line and escapes it for use as image
// alt text.
func escapeAltText(s string) string {
	return altTextEscaper.Replace(strings.Join(strings.Fields(s), " "))
}

// ListIndents returns the indent depth of each item. Depth only moves one
// step at a time, up when an item's level is above its predecessor's and down
// (never below zero) when it is below. Absolute levels are never used, so
// skipped levels collapse to a single step.
func ListIndents(items []ListItem) []int {
	indents := make([]int, len(items))
	indent := 0
	for i := 1; i < len(items); i++ {
		prev, cur := items[i-1].Level(), items[i].Level()
		switch {
		case cur > prev:
			indent++
		case cur < prev:
			indent = max(0, indent-1)
		}
		indents[i] = indent
	}
	return indents
}

// RenderList renders outline items as a nested Markdown bullet list, without
// the trailing blank line.
func RenderList(items []ListItem) string {
	indents := ListIndents(items)
	lines := make([]string, 0, len(items))
	for i, item := range items {
		text := strings.TrimSpace(item.String)
		if i > 0 && isListArtifact(text) {
			continue
		}
		lines = append(lines, strings.Repeat(" ", indentWidth*indents[i])+bulletMarker+text)
	}
	return strings.Join(lines, "\n")
}

// isListArtifact reports whether trimmed paragraph text is a formatting
// leftover rather than content: empty, or a single non-alphanumeric rune.
func isListArtifact(text string) bool {
	switch utf8.RuneCountInString(text) {
	case 0:
		return true
	case 1:
		r, _ := utf8.DecodeRuneInString(text)
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}
	return false
}
