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
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/nicholasgasior/pptx2md/internal/ooxml"
)

// errNoText is returned by Text for shapes without a text property.
var errNoText = errors.New("shape has no text")

// emuPerPixel converts English Metric Units to pixels at 96 DPI.
const emuPerPixel = 9525

// PptxProvider opens Office Open XML presentations (.pptx and relatives)
// directly, without an office host process.
type PptxProvider struct{}

// NewPptxProvider creates a new PptxProvider.
func NewPptxProvider() *PptxProvider {
	return &PptxProvider{}
}

func (p *PptxProvider) Accepts(info StreamInfo) bool {
	switch info.Extension {
	case ".pptx", ".pptm", ".ppsx", ".potx":
		return true
	}
	mime := strings.ToLower(info.MIMEType)
	return strings.HasPrefix(mime, "application/vnd.openxmlformats-officedocument.presentationml") ||
		strings.HasPrefix(mime, "application/vnd.ms-powerpoint.presentation.macroenabled")
}

// Open opens the presentation at path. The returned Document also implements
// ImageExporter.
func (p *PptxProvider) Open(filePath string) (Document, error) {
	zc, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("open PPTX ZIP: %w", err)
	}

	doc := &pptxDocument{
		closer: zc,
		zr:     &zc.Reader,
		dir:    filepath.Dir(filePath),
		pages:  make(map[int]*pptxPage),
		media:  make(map[string][]byte),
	}

	if !ooxml.HasFile(doc.zr, "ppt/presentation.xml") {
		zc.Close()
		return nil, fmt.Errorf("open PPTX: missing ppt/presentation.xml")
	}

	doc.slidePaths, err = slideOrder(doc.zr)
	if err != nil {
		zc.Close()
		return nil, fmt.Errorf("get slide order: %w", err)
	}
	return doc, nil
}

// slideOrder returns slide part names in presentation order.
func slideOrder(zr *zip.Reader) ([]string, error) {
	presData, err := ooxml.ReadFileFromZip(zr, "ppt/presentation.xml")
	if err != nil {
		return nil, err
	}
	pres, err := ooxml.ParseNode(presData)
	if err != nil {
		return nil, err
	}

	rels, err := ooxml.ParseRelationships(zr, "ppt/_rels/presentation.xml.rels")
	if err != nil {
		return nil, err
	}

	var slidePaths []string
	if lst := pres.Child("sldIdLst"); lst != nil {
		for _, sldID := range lst.All("sldId") {
			if rel, ok := rels[sldID.RelAttr("id")]; ok {
				slidePaths = append(slidePaths, ooxml.ResolveTarget("ppt/presentation.xml", rel.Target))
			}
		}
	}

	if len(slidePaths) == 0 {
		for _, f := range zr.File {
			if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
				slidePaths = append(slidePaths, f.Name)
			}
		}
		sort.Slice(slidePaths, func(i, j int) bool {
			return slideNumber(slidePaths[i]) < slideNumber(slidePaths[j])
		})
	}

	return slidePaths, nil
}

// slideNumber extracts N from "ppt/slides/slideN.xml".
func slideNumber(name string) int {
	base := strings.TrimSuffix(path.Base(name), ".xml")
	n, err := strconv.Atoi(strings.TrimPrefix(base, "slide"))
	if err != nil {
		return 0
	}
	return n
}

type pptxDocument struct {
	closer *zip.ReadCloser
	zr     *zip.Reader
	// dir is the deck's directory, the base of relative picture links.
	dir        string
	slidePaths []string
	// pages are parsed on first access and kept, so grouping sticks.
	pages map[int]*pptxPage
	media map[string][]byte
}

func (d *pptxDocument) PageCount() int {
	return len(d.slidePaths)
}

func (d *pptxDocument) Page(index int) (Page, error) {
	if index < 0 || index >= len(d.slidePaths) {
		return nil, fmt.Errorf("page index %d out of range [0,%d)", index, len(d.slidePaths))
	}
	if p, ok := d.pages[index]; ok {
		return p, nil
	}
	p, err := d.parsePage(d.slidePaths[index])
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", d.slidePaths[index], err)
	}
	d.pages[index] = p
	return p, nil
}

func (d *pptxDocument) Close() error {
	if d.closer == nil {
		return nil
	}
	err := d.closer.Close()
	d.closer = nil
	d.pages = nil
	d.media = nil
	return err
}

// mediaBytes returns the content of a package part, caching it.
func (d *pptxDocument) mediaBytes(part string) ([]byte, error) {
	if data, ok := d.media[part]; ok {
		return data, nil
	}
	data, err := ooxml.ReadFileFromZip(d.zr, part)
	if err != nil {
		return nil, err
	}
	d.media[part] = data
	return data, nil
}

// Export writes a graphic object or group surrogate to filePath.
func (d *pptxDocument) Export(shape RawShape, filePath, mimeType string) error {
	s, ok := shape.(*pptxShape)
	if !ok {
		return fmt.Errorf("export: foreign shape %T", shape)
	}

	var data []byte
	var err error
	switch {
	case s.shapeType == TypeGraphicObject:
		data, err = d.exportGraphic(s, mimeType)
	case mimeType == mimeSVG:
		data, err = d.surrogateSVG(s)
	default:
		err = fmt.Errorf("cannot export %s as %s", s.shapeType, mimeType)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	return nil
}

// linkedBytes returns the content of a linked picture file, caching it.
func (d *pptxDocument) linkedBytes(file string) ([]byte, error) {
	key := "file:" + file
	if data, ok := d.media[key]; ok {
		return data, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	d.media[key] = data
	return data, nil
}

// graphicBytes returns the picture data of a graphic shape, embedded or linked.
func (d *pptxDocument) graphicBytes(s *pptxShape) ([]byte, error) {
	switch {
	case s.mediaPart != "":
		return d.mediaBytes(s.mediaPart)
	case s.linkedFile != "":
		return d.linkedBytes(s.linkedFile)
	}
	return nil, fmt.Errorf("graphic %q is not available", s.graphic.URL)
}

// linkedFile maps a link target onto a local file. Relative targets are
// resolved against the deck's directory; remote targets have no file.
func (d *pptxDocument) linkedFile(target string) (string, bool) {
	if u, err := url.Parse(target); err == nil && len(u.Scheme) > 1 {
		if u.Scheme != "file" {
			return "", false
		}
		target = u.Path
	}
	file := filepath.FromSlash(target)
	if !filepath.IsAbs(file) {
		file = filepath.Join(d.dir, file)
	}
	return file, true
}

func (d *pptxDocument) exportGraphic(s *pptxShape, mimeType string) ([]byte, error) {
	if !s.hasMedia() {
		if mimeType == mimeSVG {
			return d.surrogateSVG(s)
		}
		return nil, fmt.Errorf("graphic %q is not available", s.graphic.URL)
	}
	data, err := d.graphicBytes(s)
	if err != nil {
		return nil, err
	}
	if sameMIME(mimeType, s.graphic.MimeType) {
		return data, nil
	}
	if mimeType == mimeSVG {
		return d.surrogateSVG(s)
	}
	return nil, fmt.Errorf("cannot convert %s to %s", s.graphic.MimeType, mimeType)
}

func sameMIME(a, b string) bool {
	return a == "" || strings.EqualFold(a, b) || PlausibleExtension(a) == PlausibleExtension(b)
}

type emuRect struct {
	X, Y, W, H int64
}

func (r emuRect) union(o emuRect) emuRect {
	x0, y0 := min(r.X, o.X), min(r.Y, o.Y)
	x1, y1 := max(r.X+r.W, o.X+o.W), max(r.Y+r.H, o.Y+o.H)
	return emuRect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// pptxShape is a RawShape backed by a slide XML element.
type pptxShape struct {
	shapeType string
	name      string

	text    string
	hasText bool
	paras   []TextRange
	hasBody bool

	bounds    emuRect
	hasBounds bool

	graphic    GraphicMetadata
	mediaPart  string
	linkedFile string

	table    [][]string
	children []*pptxShape
	// surrogate is set once a group was converted into a metafile.
	surrogate bool
}

func (s *pptxShape) ShapeType() string { return s.shapeType }

// hasMedia reports whether the picture data of a graphic can be read.
func (s *pptxShape) hasMedia() bool {
	return s.mediaPart != "" || s.linkedFile != ""
}

func (s *pptxShape) Text() (string, error) {
	if !s.hasText {
		return "", errNoText
	}
	return s.text, nil
}

func (s *pptxShape) Graphic() (GraphicMetadata, bool) {
	if s.shapeType != TypeGraphicObject {
		return GraphicMetadata{}, false
	}
	return s.graphic, true
}

func (s *pptxShape) ChildElements() (ChildElements, bool) {
	if !s.hasBody {
		return ChildElements{}, false
	}
	items := make([]TextRange, len(s.paras))
	copy(items, s.paras)
	return ChildElements{ElementType: ElementTypeTextRange, Items: items}, true
}

type pptxPage struct {
	part   string
	shapes []*pptxShape
}

func (p *pptxPage) Count() int {
	return len(p.shapes)
}

func (p *pptxPage) ShapeAt(index int) (RawShape, error) {
	if index < 0 || index >= len(p.shapes) {
		return nil, fmt.Errorf("shape index %d out of range [0,%d)", index, len(p.shapes))
	}
	return p.shapes[index], nil
}

// Group replaces the given shapes with one new group shape placed where the
// first of them was.
func (p *pptxPage) Group(shapes []RawShape) (RawShape, error) {
	if len(shapes) == 0 {
		return nil, errors.New("nothing to group")
	}

	members := make([]*pptxShape, 0, len(shapes))
	first := len(p.shapes)
	for _, rs := range shapes {
		s, ok := rs.(*pptxShape)
		if !ok {
			return nil, fmt.Errorf("foreign shape %T", rs)
		}
		idx := slices.Index(p.shapes, s)
		if idx < 0 {
			return nil, fmt.Errorf("shape %q is not on page %s", s.name, p.part)
		}
		first = min(first, idx)
		members = append(members, s)
	}

	group := &pptxShape{shapeType: TypeGroup, name: "Group", children: members}
	for _, m := range members {
		if !m.hasBounds {
			continue
		}
		if group.hasBounds {
			group.bounds = group.bounds.union(m.bounds)
		} else {
			group.bounds, group.hasBounds = m.bounds, true
		}
	}

	kept := make([]*pptxShape, 0, len(p.shapes)-len(members)+1)
	for i, s := range p.shapes {
		if i == first {
			kept = append(kept, group)
		}
		if !slices.Contains(members, s) {
			kept = append(kept, s)
		}
	}
	p.shapes = kept
	return group, nil
}

func (p *pptxPage) ConvertToMetafile(group RawShape) error {
	s, ok := group.(*pptxShape)
	if !ok || s.shapeType != TypeGroup {
		return fmt.Errorf("not a group shape: %T", group)
	}
	if !slices.Contains(p.shapes, s) {
		return fmt.Errorf("group is not on page %s", p.part)
	}
	s.surrogate = true
	return nil
}

// parsePage parses a slide part into its top-level shapes.
func (d *pptxDocument) parsePage(part string) (*pptxPage, error) {
	data, err := ooxml.ReadFileFromZip(d.zr, part)
	if err != nil {
		return nil, err
	}
	root, err := ooxml.ParseNode(data)
	if err != nil {
		return nil, err
	}
	rels, err := ooxml.ParseRelationships(d.zr, ooxml.RelsPathFor(part))
	if err != nil {
		return nil, err
	}

	page := &pptxPage{part: part}
	tree := root.Path("cSld", "spTree")
	if tree == nil {
		return page, nil
	}
	sp := &slideParser{doc: d, part: part, rels: rels}
	page.shapes = sp.parseChildren(tree)
	return page, nil
}

type slideParser struct {
	doc  *pptxDocument
	part string
	rels map[string]ooxml.Relationship
}

// parseChildren converts the shape elements below a shape tree or group.
func (sp *slideParser) parseChildren(tree *ooxml.Node) []*pptxShape {
	var shapes []*pptxShape
	for i := range tree.Children {
		if s := sp.parseShape(&tree.Children[i]); s != nil {
			shapes = append(shapes, s)
		}
	}
	return shapes
}

func (sp *slideParser) parseShape(n *ooxml.Node) *pptxShape {
	switch n.Local() {
	case "sp":
		return sp.parseSP(n)
	case "cxnSp":
		s := &pptxShape{shapeType: TypeLine, name: shapeName(n, "nvCxnSpPr")}
		s.bounds, s.hasBounds = xfrmBounds(n.Path("spPr", "xfrm"))
		return s
	case "pic":
		return sp.parsePic(n)
	case "graphicFrame":
		return sp.parseGraphicFrame(n)
	case "grpSp":
		return sp.parseGroup(n)
	case "AlternateContent":
		// Prefer the fallback rendering, which uses only core elements.
		alt := n.Child("Fallback")
		if alt == nil {
			alt = n.Child("Choice")
		}
		if alt != nil && len(alt.Children) > 0 {
			return sp.parseShape(&alt.Children[0])
		}
	}
	return nil
}

func shapeName(n *ooxml.Node, nvProps string) string {
	if c := n.Path(nvProps, "cNvPr"); c != nil {
		return c.Attr("name")
	}
	return ""
}

// parseSP maps a p:sp element onto the shape taxonomy by its placeholder type.
func (sp *slideParser) parseSP(n *ooxml.Node) *pptxShape {
	s := &pptxShape{name: shapeName(n, "nvSpPr"), hasText: true}
	s.bounds, s.hasBounds = xfrmBounds(n.Path("spPr", "xfrm"))

	if ph := n.Path("nvSpPr", "nvPr", "ph"); ph != nil {
		switch ph.Attr("type") {
		case "title", "ctrTitle":
			s.shapeType = TypeTitleText
		case "subTitle":
			s.shapeType = TypeSubtitle
		case "", "body", "obj":
			s.shapeType = TypeOutliner
		default:
			s.shapeType = TypeText
		}
	} else if c := n.Path("nvSpPr", "cNvSpPr"); c != nil && c.Attr("txBox") == "1" {
		s.shapeType = TypeText
	} else {
		s.shapeType = TypeCustom
	}

	if body := n.Child("txBody"); body != nil {
		s.hasBody = true
		s.paras = parseParagraphs(body)
		lines := make([]string, len(s.paras))
		for i, p := range s.paras {
			lines[i] = p.Text
		}
		s.text = strings.Join(lines, "\n")
	}
	return s
}

// parseParagraphs returns one TextRange per a:p of a text body.
func parseParagraphs(body *ooxml.Node) []TextRange {
	var paras []TextRange
	for _, p := range body.All("p") {
		tr := TextRange{Text: paragraphText(p)}
		if pPr := p.Child("pPr"); pPr != nil {
			if v := pPr.Attr("lvl"); v != "" {
				if lvl, err := strconv.Atoi(v); err == nil {
					tr.NumberingLevel = &lvl
				}
			}
			if auto := pPr.Child("buAutoNum"); auto != nil {
				tr.NumberingIsNumber = true
				tr.NumberingStartValue = 1
				if v, err := strconv.Atoi(auto.Attr("startAt")); err == nil {
					tr.NumberingStartValue = v
				}
			}
		}
		paras = append(paras, tr)
	}
	return paras
}

func paragraphText(p *ooxml.Node) string {
	var b strings.Builder
	for i := range p.Children {
		c := &p.Children[i]
		switch c.Local() {
		case "r", "fld":
			if t := c.Child("t"); t != nil {
				b.WriteString(t.Text())
			}
		case "br":
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (sp *slideParser) parsePic(n *ooxml.Node) *pptxShape {
	s := &pptxShape{shapeType: TypeGraphicObject, name: shapeName(n, "nvPicPr")}
	s.bounds, s.hasBounds = xfrmBounds(n.Path("spPr", "xfrm"))

	if c := n.Path("nvPicPr", "cNvPr"); c != nil && c.HasAttr("descr") {
		s.text, s.hasText = c.Attr("descr"), true
	}

	blip := n.Path("blipFill", "blip")
	if blip == nil {
		return s
	}
	rid := blip.RelAttr("embed")
	external := false
	if rid == "" {
		rid, external = blip.RelAttr("link"), true
	}
	rel, ok := sp.rels[rid]
	if !ok {
		return s
	}

	s.graphic.StreamURL = sp.part + "#" + rid
	if external || rel.External() {
		s.graphic.URL = rel.Target
		if file, ok := sp.doc.linkedFile(rel.Target); ok {
			if data, err := sp.doc.linkedBytes(file); err == nil {
				s.linkedFile = file
				describeMedia(s, data, filepath.Ext(file))
				return s
			}
		}
		// Unreachable links export as a placeholder drawing.
		s.graphic.MimeType = mimeSVG
		return s
	}

	s.mediaPart = ooxml.ResolveTarget(sp.part, rel.Target)
	s.graphic.URL = s.mediaPart
	data, err := sp.doc.mediaBytes(s.mediaPart)
	if err != nil {
		s.graphic.MimeType = mimeFromExtension(path.Ext(s.mediaPart))
		return s
	}
	describeMedia(s, data, path.Ext(s.mediaPart))
	return s
}

// describeMedia fills in the MIME type and natural size of a picture.
func describeMedia(s *pptxShape, data []byte, ext string) {
	s.graphic.MimeType = detectMediaType(data, ext)
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		s.graphic.Width, s.graphic.Height = int64(cfg.Width), int64(cfg.Height)
	} else if s.hasBounds {
		s.graphic.Width, s.graphic.Height = s.bounds.W/emuPerPixel, s.bounds.H/emuPerPixel
	}
}

func (sp *slideParser) parseGraphicFrame(n *ooxml.Node) *pptxShape {
	s := &pptxShape{shapeType: TypeOLE, name: shapeName(n, "nvGraphicFramePr")}
	s.bounds, s.hasBounds = xfrmBounds(n.Child("xfrm"))

	data := n.Path("graphic", "graphicData")
	if data == nil {
		return s
	}
	if tbl := data.Child("tbl"); tbl != nil || strings.Contains(data.Attr("uri"), "/table") {
		s.shapeType = TypeTable
		if tbl != nil {
			s.table = extractTable(tbl)
		}
	}
	return s
}

// extractTable extracts cell text from an a:tbl element.
func extractTable(tbl *ooxml.Node) [][]string {
	var rows [][]string
	for _, tr := range tbl.All("tr") {
		var row []string
		for _, tc := range tr.All("tc") {
			cell := ""
			if body := tc.Child("txBody"); body != nil {
				var lines []string
				for _, p := range parseParagraphs(body) {
					lines = append(lines, p.Text)
				}
				cell = strings.TrimSpace(strings.Join(lines, " "))
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}
	return rows
}

// parseGroup parses a p:grpSp and maps its members from the group's child
// coordinate space into the enclosing space.
func (sp *slideParser) parseGroup(n *ooxml.Node) *pptxShape {
	s := &pptxShape{shapeType: TypeGroup, name: shapeName(n, "nvGrpSpPr")}
	s.children = sp.parseChildren(n)

	xfrm := n.Path("grpSpPr", "xfrm")
	s.bounds, s.hasBounds = xfrmBounds(xfrm)
	if xfrm == nil || !s.hasBounds {
		return s
	}

	chOff, chExt := xfrm.Child("chOff"), xfrm.Child("chExt")
	if chOff == nil || chExt == nil {
		return s
	}
	cx, cy := attrInt(chOff, "x"), attrInt(chOff, "y")
	cw, ch := attrInt(chExt, "cx"), attrInt(chExt, "cy")
	sx, sy := 1.0, 1.0
	if cw > 0 {
		sx = float64(s.bounds.W) / float64(cw)
	}
	if ch > 0 {
		sy = float64(s.bounds.H) / float64(ch)
	}
	mapRect := func(r emuRect) emuRect {
		return emuRect{
			X: s.bounds.X + int64(float64(r.X-cx)*sx),
			Y: s.bounds.Y + int64(float64(r.Y-cy)*sy),
			W: int64(float64(r.W) * sx),
			H: int64(float64(r.H) * sy),
		}
	}
	var walk func([]*pptxShape)
	walk = func(shapes []*pptxShape) {
		for _, c := range shapes {
			if c.hasBounds {
				c.bounds = mapRect(c.bounds)
			}
			walk(c.children)
		}
	}
	walk(s.children)
	return s
}

// xfrmBounds reads a:off/a:ext of a transform element.
func xfrmBounds(xfrm *ooxml.Node) (emuRect, bool) {
	if xfrm == nil {
		return emuRect{}, false
	}
	off, ext := xfrm.Child("off"), xfrm.Child("ext")
	if off == nil || ext == nil {
		return emuRect{}, false
	}
	return emuRect{
		X: attrInt(off, "x"),
		Y: attrInt(off, "y"),
		W: attrInt(ext, "cx"),
		H: attrInt(ext, "cy"),
	}, true
}

func attrInt(n *ooxml.Node, name string) int64 {
	v, err := strconv.ParseInt(n.Attr(name), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// detectMediaType sniffs embedded media, falling back to the part extension
// for formats the sniffer does not know.
func detectMediaType(data []byte, ext string) string {
	mt := mimetype.Detect(data)
	if mt.Is("application/octet-stream") || mt.Is("text/plain") {
		if m := mimeFromExtension(ext); m != "" {
			return m
		}
	}
	mime, _, _ := strings.Cut(mt.String(), ";")
	return strings.TrimSpace(mime)
}

// mimeFromExtension returns a MIME type for common media extensions.
func mimeFromExtension(ext string) string {
	extMap := map[string]string{
		".png":  "image/png",
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".gif":  "image/gif",
		".bmp":  "image/bmp",
		".tif":  "image/tiff",
		".tiff": "image/tiff",
		".webp": "image/webp",
		".svg":  mimeSVG,
		".emf":  "image/x-emf",
		".wmf":  "image/x-wmf",
	}
	return extMap[strings.ToLower(ext)]
}
