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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Builder turns the pages of a Document into SlideRecords, exporting graphics
// into an image directory along the way.
type Builder struct {
	exporter ImageExporter
	imageDir string
	logger   *slog.Logger
}

// NewBuilder creates a Builder. A nil logger falls back to slog.Default().
func NewBuilder(exporter ImageExporter, imageDir string, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		exporter: exporter,
		imageDir: imageDir,
		logger:   logger,
	}
}

// exportedImage is what the export cache remembers about a source graphic.
type exportedImage struct {
	filename    string
	svgFilename string
}

// buildRun holds the state of a single Build call.
type buildRun struct {
	*Builder
	dir      string
	dirReady bool
	// exported maps a graphic's source identity to its exported files.
	exported map[string]exportedImage
}

// Build groups and walks every page of doc in order. The returned records hold
// no reference to doc. Any error aborts the whole build.
func (b *Builder) Build(doc Document) ([]SlideRecord, error) {
	dir, err := filepath.Abs(b.imageDir)
	if err != nil {
		return nil, fmt.Errorf("resolve image dir: %w", err)
	}

	run := &buildRun{
		Builder:  b,
		dir:      dir,
		exported: make(map[string]exportedImage),
	}

	n := doc.PageCount()
	slides := make([]SlideRecord, 0, n)
	for i := 0; i < n; i++ {
		slide, err := run.buildSlide(doc, i)
		if err != nil {
			return nil, err
		}
		slides = append(slides, slide)
	}
	return slides, nil
}

func (r *buildRun) buildSlide(doc Document, i int) (SlideRecord, error) {
	r.logger.Info("processing page", "page", i)

	page, err := doc.Page(i)
	if err != nil {
		return SlideRecord{}, fmt.Errorf("page %d: %w", i, err)
	}

	// Glom drawings, tables and diagrams into one metafile first.
	if err := GroupShapes(page, r.logger); err != nil {
		return SlideRecord{}, &GroupingError{Slide: i, Err: err}
	}

	count := page.Count()
	slide := SlideRecord{
		SlideNum: i,
		Shapes:   make([]ShapeDescriptor, 0, count),
	}
	for j := 0; j < count; j++ {
		shape, err := page.ShapeAt(j)
		if err != nil {
			return SlideRecord{}, fmt.Errorf("page %d shape %d: %w", i, j, err)
		}
		desc, err := r.describe(i, j, shape)
		if err != nil {
			return SlideRecord{}, err
		}
		slide.Shapes = append(slide.Shapes, desc)
	}
	return slide, nil
}

// describe builds the descriptor of the j-th shape of page i.
func (r *buildRun) describe(i, j int, shape RawShape) (ShapeDescriptor, error) {
	desc := ShapeDescriptor{
		ShapeType: shape.ShapeType(),
		ShapeNum:  j + 1,
	}

	if text, err := shape.Text(); err == nil {
		text = normalizeText(text)
		desc.String = &text
	}

	switch desc.Kind() {
	case KindGraphicObject:
		if err := r.describeGraphic(i, j, shape, &desc); err != nil {
			return ShapeDescriptor{}, err
		}

	case KindOLE, KindTable, KindLine, KindCustom:
		return ShapeDescriptor{}, &InvariantError{Slide: i, Shape: j + 1, ShapeType: desc.ShapeType}

	case KindGroup:
		// Only the grouping pass's own surrogate gets here; it is never shared.
		name := ImageFilename(i+1, j+1, "svg")
		path, err := r.export(i, j, shape, name, mimeSVG)
		if err != nil {
			return ShapeDescriptor{}, err
		}
		r.logger.Debug("exported group", "page", i, "shape", j+1, "path", path)
		desc.ExportedSvgFilename = path

	default:
		describeElements(shape, &desc)
	}

	return desc, nil
}

func (r *buildRun) describeGraphic(i, j int, shape RawShape, desc *ShapeDescriptor) error {
	meta, ok := shape.Graphic()
	if !ok {
		return &ExportError{Slide: i, Shape: j + 1, Err: errors.New("graphic metadata unavailable")}
	}

	desc.Graphic = true
	desc.GraphicURL = meta.URL
	desc.GraphicStreamURL = meta.StreamURL
	desc.MimeType = meta.MimeType
	desc.Width = meta.Width
	desc.Height = meta.Height

	if prev, ok := r.exported[meta.URL]; ok {
		desc.ExportedFilename = filepath.Join(r.dir, prev.filename)
		if prev.svgFilename != "" {
			desc.ExportedSvgFilename = filepath.Join(r.dir, prev.svgFilename)
		}
		return nil
	}

	entry := exportedImage{filename: ImageFilename(i+1, j+1, meta.MimeType)}
	path, err := r.export(i, j, shape, entry.filename, meta.MimeType)
	if err != nil {
		return err
	}
	r.logger.Debug("exported graphic", "page", i, "shape", j+1, "path", path)
	desc.ExportedFilename = path

	if isMetafile(meta.MimeType) {
		entry.svgFilename = ImageFilename(i+1, j+1, "svg")
		svgPath, err := r.export(i, j, shape, entry.svgFilename, mimeSVG)
		if err != nil {
			return err
		}
		r.logger.Debug("exported metafile as SVG", "page", i, "shape", j+1, "path", svgPath)
		desc.ExportedSvgFilename = svgPath
	}

	r.exported[meta.URL] = entry
	return nil
}

// export writes shape to name inside the image directory and returns the
// absolute path.
func (r *buildRun) export(i, j int, shape RawShape, name, mimeType string) (string, error) {
	path := filepath.Join(r.dir, name)
	if r.exporter == nil {
		return "", &ExportError{Slide: i, Shape: j + 1, Path: path, Err: ErrNoExporter}
	}
	if !r.dirReady {
		if err := os.MkdirAll(r.dir, 0o755); err != nil {
			return "", &ExportError{Slide: i, Shape: j + 1, Path: path, Err: err}
		}
		r.dirReady = true
	}
	if err := r.exporter.Export(shape, path, mimeType); err != nil {
		return "", &ExportError{Slide: i, Shape: j + 1, Path: path, Err: err}
	}
	return path, nil
}

// describeElements records the paragraphs of text-range shapes with more than
// one paragraph. A single paragraph is plain text, not a list.
func describeElements(shape RawShape, desc *ShapeDescriptor) {
	els, ok := shape.ChildElements()
	if !ok {
		return
	}
	desc.HasElements = true
	desc.ElementType = els.ElementType

	if els.ElementType != ElementTypeTextRange || len(els.Items) <= 1 {
		return
	}

	desc.NumEls = len(els.Items)
	desc.Elements = make([]ListItem, len(els.Items))
	for k, el := range els.Items {
		item := ListItem{
			String:              normalizeText(el.Text),
			NumberingIsNumber:   el.NumberingIsNumber,
			NumberingStartValue: el.NumberingStartValue,
		}
		if el.NumberingLevel != nil {
			level := *el.NumberingLevel
			item.NumberingLevel = &level
		}
		desc.Elements[k] = item
	}
}
