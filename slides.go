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

// Shape type tags as reported by a Document Provider. The values follow the
// office drawing API naming so records produced by different providers stay
// comparable.
const (
	TypeTitleText     = "com.sun.star.presentation.TitleTextShape"
	TypeSubtitle      = "com.sun.star.presentation.SubtitleShape"
	TypeOutliner      = "com.sun.star.presentation.OutlinerShape"
	TypeNotes         = "com.sun.star.presentation.NotesShape"
	TypeText          = "com.sun.star.drawing.TextShape"
	TypeGraphicObject = "com.sun.star.drawing.GraphicObjectShape"
	TypeGroup         = "com.sun.star.drawing.GroupShape"
	TypeOLE           = "com.sun.star.drawing.OLE2Shape"
	TypeTable         = "com.sun.star.drawing.TableShape"
	TypeLine          = "com.sun.star.drawing.LineShape"
	TypeCustom        = "com.sun.star.drawing.CustomShape"
)

// ElementTypeTextRange is the child element type of shapes whose paragraphs
// can be enumerated.
const ElementTypeTextRange = "com.sun.star.text.XTextRange"

// ShapeKind is the closed set of shape kinds the converter distinguishes.
type ShapeKind int

const (
	KindUnknown ShapeKind = iota
	KindTitleText
	KindGraphicObject
	KindGroup
	KindTable
	KindOLE
	KindLine
	KindCustom
	KindOutliner
	KindText
)

var kindNames = [...]string{
	KindUnknown:       "unknown",
	KindTitleText:     "title",
	KindGraphicObject: "graphic",
	KindGroup:         "group",
	KindTable:         "table",
	KindOLE:           "ole",
	KindLine:          "line",
	KindCustom:        "custom",
	KindOutliner:      "outliner",
	KindText:          "text",
}

func (k ShapeKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// KindOf maps a provider shape type tag onto a ShapeKind. Unrecognized tags
// map to KindUnknown.
func KindOf(shapeType string) ShapeKind {
	switch shapeType {
	case TypeTitleText:
		return KindTitleText
	case TypeGraphicObject:
		return KindGraphicObject
	case TypeGroup:
		return KindGroup
	case TypeTable:
		return KindTable
	case TypeOLE:
		return KindOLE
	case TypeLine:
		return KindLine
	case TypeCustom:
		return KindCustom
	case TypeOutliner:
		return KindOutliner
	case TypeText, TypeSubtitle, TypeNotes:
		return KindText
	}
	return KindUnknown
}

// CompositeProne reports whether shapes of this kind cannot be exported on
// their own and must be merged into a page composite first.
func (k ShapeKind) CompositeProne() bool {
	switch k {
	case KindOLE, KindLine, KindCustom, KindTable, KindGroup:
		return true
	}
	return false
}

// SlideRecord is the serializable form of one page.
type SlideRecord struct {
	SlideNum int               `json:"slideNum" yaml:"slideNum"`
	Shapes   []ShapeDescriptor `json:"shapes" yaml:"shapes"`
}

// ShapeDescriptor describes one shape of a page. Which of the optional fields
// are set depends on the shape kind.
type ShapeDescriptor struct {
	ShapeType string  `json:"shapeType" yaml:"shapeType"`
	ShapeNum  int     `json:"shapeNum" yaml:"shapeNum"`
	String    *string `json:"string,omitempty" yaml:"string,omitempty"`

	// Graphic objects.
	Graphic             bool   `json:"graphic,omitempty" yaml:"graphic,omitempty"`
	GraphicURL          string `json:"graphicUrl,omitempty" yaml:"graphicUrl,omitempty"`
	GraphicStreamURL    string `json:"graphicStreamUrl,omitempty" yaml:"graphicStreamUrl,omitempty"`
	MimeType            string `json:"mimeType,omitempty" yaml:"mimeType,omitempty"`
	Width               int64  `json:"width,omitempty" yaml:"width,omitempty"`
	Height              int64  `json:"height,omitempty" yaml:"height,omitempty"`
	ExportedFilename    string `json:"exportedFilename,omitempty" yaml:"exportedFilename,omitempty"`
	ExportedSvgFilename string `json:"exportedSvgFilename,omitempty" yaml:"exportedSvgFilename,omitempty"`

	// Outline-bearing shapes.
	HasElements bool       `json:"hasElements,omitempty" yaml:"hasElements,omitempty"`
	ElementType string     `json:"elementType,omitempty" yaml:"elementType,omitempty"`
	NumEls      int        `json:"numEls,omitempty" yaml:"numEls,omitempty"`
	Elements    []ListItem `json:"elements,omitempty" yaml:"elements,omitempty"`
}

// Kind returns the shape kind of the descriptor's type tag.
func (s ShapeDescriptor) Kind() ShapeKind {
	return KindOf(s.ShapeType)
}

// Text returns the shape text, or "" when the shape has none.
func (s ShapeDescriptor) Text() string {
	if s.String == nil {
		return ""
	}
	return *s.String
}

// ListItem is one paragraph of an outline-bearing shape.
type ListItem struct {
	String              string `json:"string" yaml:"string"`
	NumberingLevel      *int   `json:"numberingLevel" yaml:"numberingLevel"`
	NumberingIsNumber   bool   `json:"numberingIsNumber" yaml:"numberingIsNumber"`
	NumberingStartValue int    `json:"numberingStartValue" yaml:"numberingStartValue"`
}

// Level returns the numbering level, treating a missing level as 0.
func (li ListItem) Level() int {
	if li.NumberingLevel == nil {
		return 0
	}
	return *li.NumberingLevel
}
