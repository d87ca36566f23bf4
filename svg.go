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
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strings"
)

const (
	svgFontSize   = 14
	svgLineHeight = 18
	svgPadding    = 4
	// svgDefaultSize is used for shapes without a transform.
	svgDefaultSize = 320
)

// surrogateSVG draws a best-effort static rendering of a shape: outlines of
// the drawing primitives, their text, connector lines and embedded pictures.
func (d *pptxDocument) surrogateSVG(s *pptxShape) ([]byte, error) {
	frame := s.bounds
	if !s.hasBounds || frame.W <= 0 || frame.H <= 0 {
		frame = emuRect{W: svgDefaultSize * emuPerPixel, H: svgDefaultSize * emuPerPixel}
	}

	w := &svgWriter{doc: d, origin: frame}
	w.buf.WriteString(xml.Header)
	fmt.Fprintf(&w.buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		px(frame.W), px(frame.H), px(frame.W), px(frame.H))
	if s.surrogate {
		fmt.Fprintf(&w.buf, `<rect x="0" y="0" width="%d" height="%d" fill="white"/>`+"\n", px(frame.W), px(frame.H))
	}

	if err := w.shape(s, frame); err != nil {
		return nil, err
	}

	w.buf.WriteString("</svg>\n")
	return w.buf.Bytes(), nil
}

type svgWriter struct {
	doc    *pptxDocument
	origin emuRect
	buf    bytes.Buffer
}

func px(emu int64) int64 {
	return emu / emuPerPixel
}

// local converts a slide-space rectangle into SVG pixel coordinates.
func (w *svgWriter) local(r emuRect) (x, y, width, height int64) {
	return px(r.X - w.origin.X), px(r.Y - w.origin.Y), px(r.W), px(r.H)
}

func (w *svgWriter) shape(s *pptxShape, fallback emuRect) error {
	r := s.bounds
	if !s.hasBounds {
		r = fallback
	}
	x, y, width, height := w.local(r)

	switch s.shapeType {
	case TypeGroup:
		for _, c := range s.children {
			if err := w.shape(c, r); err != nil {
				return err
			}
		}

	case TypeLine:
		fmt.Fprintf(&w.buf, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="black"/>`+"\n", x, y, x+width, y+height)

	case TypeGraphicObject:
		if !s.hasMedia() {
			w.rect(x, y, width, height)
			return nil
		}
		data, err := w.doc.graphicBytes(s)
		if err != nil {
			return fmt.Errorf("embed %s: %w", s.graphic.URL, err)
		}
		fmt.Fprintf(&w.buf, `<image x="%d" y="%d" width="%d" height="%d" href="data:%s;base64,%s"/>`+"\n",
			x, y, width, height, s.graphic.MimeType, base64.StdEncoding.EncodeToString(data))

	case TypeTable:
		w.rect(x, y, width, height)
		lines := make([]string, 0, len(s.table))
		for _, row := range s.table {
			lines = append(lines, strings.Join(row, " | "))
		}
		w.text(x, y, lines)

	default:
		w.rect(x, y, width, height)
		if s.hasText && s.text != "" {
			w.text(x, y, strings.Split(s.text, "\n"))
		}
	}
	return nil
}

func (w *svgWriter) rect(x, y, width, height int64) {
	fmt.Fprintf(&w.buf, `<rect x="%d" y="%d" width="%d" height="%d" fill="none" stroke="gray"/>`+"\n", x, y, width, height)
}

func (w *svgWriter) text(x, y int64, lines []string) {
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fmt.Fprintf(&w.buf, `<text x="%d" y="%d" font-family="sans-serif" font-size="%d">`,
			x+svgPadding, y+svgPadding+int64((i+1)*svgLineHeight), svgFontSize)
		_ = xml.EscapeText(&w.buf, []byte(line))
		w.buf.WriteString("</text>\n")
	}
}
