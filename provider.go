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

// StreamInfo holds metadata about the input document.
type StreamInfo struct {
	MIMEType  string
	Extension string
	Filename  string
	LocalPath string
}

// DocumentProvider opens presentation documents and exposes their object model.
type DocumentProvider interface {
	// Accepts returns true if this provider can open the given input.
	Accepts(info StreamInfo) bool

	// Open loads the document at path.
	Open(path string) (Document, error)
}

// Document is an opened presentation. Close releases it without saving any
// changes made by the grouping pass.
type Document interface {
	PageCount() int
	Page(index int) (Page, error)
	Close() error
}

// Page is the live shape container of one slide.
type Page interface {
	// Count returns the number of shapes currently on the page.
	Count() int

	// ShapeAt returns the shape at the given enumeration index.
	ShapeAt(index int) (RawShape, error)

	// Group merges shapes into one new group shape on the page and returns it.
	// Indices of the remaining shapes may change.
	Group(shapes []RawShape) (RawShape, error)

	// ConvertToMetafile turns a group produced by Group into a static image
	// surrogate that can be exported like any other graphic.
	ConvertToMetafile(group RawShape) error
}

// RawShape is one shape as seen through the provider.
type RawShape interface {
	ShapeType() string

	// Text returns the plain text of the shape. Shapes without a text
	// property return an error; callers treat that as "no text".
	Text() (string, error)

	// Graphic returns graphic metadata for graphic object shapes.
	Graphic() (GraphicMetadata, bool)

	// ChildElements returns the enumerable paragraphs of the shape, if any.
	ChildElements() (ChildElements, bool)
}

// GraphicMetadata describes the graphic behind a graphic object shape.
type GraphicMetadata struct {
	// URL identifies the source graphic. Shapes sharing a URL share an export.
	URL       string
	StreamURL string
	MimeType  string
	Width     int64
	Height    int64
}

// ChildElements is the result of enumerating a shape's child elements.
type ChildElements struct {
	ElementType string
	Items       []TextRange
}

// TextRange is one enumerated paragraph of a text-bearing shape.
type TextRange struct {
	Text                string
	NumberingLevel      *int
	NumberingIsNumber   bool
	NumberingStartValue int
}

// ImageExporter writes a shape's graphic to a file.
type ImageExporter interface {
	Export(shape RawShape, path, mimeType string) error
}
