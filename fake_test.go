package pptx2md

import (
	"errors"
	"os"
	"slices"
)

// fakeShape is an in-memory RawShape.
type fakeShape struct {
	shapeType string
	text      string
	textErr   error
	graphic   *GraphicMetadata
	elements  *ChildElements
}

func (s *fakeShape) ShapeType() string { return s.shapeType }

func (s *fakeShape) Text() (string, error) {
	if s.textErr != nil {
		return "", s.textErr
	}
	return s.text, nil
}

func (s *fakeShape) Graphic() (GraphicMetadata, bool) {
	if s.graphic == nil {
		return GraphicMetadata{}, false
	}
	return *s.graphic, true
}

func (s *fakeShape) ChildElements() (ChildElements, bool) {
	if s.elements == nil {
		return ChildElements{}, false
	}
	return *s.elements, true
}

func textShape(shapeType, text string) *fakeShape {
	return &fakeShape{shapeType: shapeType, text: text}
}

func graphicShape(url, mimeType string) *fakeShape {
	return &fakeShape{
		shapeType: TypeGraphicObject,
		graphic:   &GraphicMetadata{URL: url, MimeType: mimeType, Width: 640, Height: 480},
	}
}

func level(n int) *int { return &n }

// outlineShape builds an outliner shape with one paragraph per text.
func outlineShape(texts []string, levels []*int) *fakeShape {
	els := &ChildElements{ElementType: ElementTypeTextRange}
	for i, t := range texts {
		els.Items = append(els.Items, TextRange{Text: t, NumberingLevel: levels[i]})
	}
	s := &fakeShape{shapeType: TypeOutliner, elements: els}
	for i, t := range texts {
		if i > 0 {
			s.text += "\n"
		}
		s.text += t
	}
	return s
}

// fakePage is an in-memory Page. With brokenGrouping set, Group leaves the
// page untouched, which lets tests reach the builder's invariant check.
type fakePage struct {
	shapes         []RawShape
	groupErr       error
	brokenGrouping bool
	converted      []RawShape
}

func (p *fakePage) Count() int { return len(p.shapes) }

func (p *fakePage) ShapeAt(i int) (RawShape, error) {
	if i < 0 || i >= len(p.shapes) {
		return nil, errors.New("index out of range")
	}
	return p.shapes[i], nil
}

func (p *fakePage) Group(shapes []RawShape) (RawShape, error) {
	if p.groupErr != nil {
		return nil, p.groupErr
	}
	group := &fakeShape{shapeType: TypeGroup, textErr: errNoText}
	if p.brokenGrouping {
		return group, nil
	}
	first := -1
	var kept []RawShape
	for i, s := range p.shapes {
		if slices.Contains(shapes, s) {
			if first < 0 {
				first = i
				kept = append(kept, group)
			}
			continue
		}
		kept = append(kept, s)
	}
	p.shapes = kept
	return group, nil
}

func (p *fakePage) ConvertToMetafile(group RawShape) error {
	p.converted = append(p.converted, group)
	return nil
}

type fakeDoc struct {
	pages  []*fakePage
	closed bool
}

func (d *fakeDoc) PageCount() int { return len(d.pages) }

func (d *fakeDoc) Page(i int) (Page, error) { return d.pages[i], nil }

func (d *fakeDoc) Close() error {
	d.closed = true
	return nil
}

func newFakeDoc(pages ...[]RawShape) *fakeDoc {
	d := &fakeDoc{}
	for _, shapes := range pages {
		d.pages = append(d.pages, &fakePage{shapes: shapes})
	}
	return d
}

type exportCall struct {
	shape    RawShape
	path     string
	mimeType string
}

// fakeExporter records every export and writes an empty file.
type fakeExporter struct {
	calls []exportCall
	err   error
}

func (e *fakeExporter) Export(shape RawShape, path, mimeType string) error {
	e.calls = append(e.calls, exportCall{shape: shape, path: path, mimeType: mimeType})
	if e.err != nil {
		return e.err
	}
	return os.WriteFile(path, nil, 0o644)
}

// fakeProvider serves a fixed document for files with the .fake extension.
type fakeProvider struct {
	doc *fakeDoc
}

func (p *fakeProvider) Accepts(info StreamInfo) bool { return info.Extension == ".fake" }

func (p *fakeProvider) Open(string) (Document, error) { return p.doc, nil }
