package pptx2md

import (
	"archive/zip"
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	presentationXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <p:sldIdLst>%s</p:sldIdLst>
</p:presentation>`

	slideHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <p:cSld><p:spTree>
    <p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>
    <p:grpSpPr/>`

	slideFooter = `
  </p:spTree></p:cSld>
</p:sld>`

	titleSP = `
    <p:sp>
      <p:nvSpPr><p:cNvPr id="2" name="Title 1"/><p:cNvSpPr/><p:nvPr><p:ph type="title"/></p:nvPr></p:nvSpPr>
      <p:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="9525000" cy="952500"/></a:xfrm></p:spPr>
      <p:txBody><a:bodyPr/><a:p><a:r><a:t>%s</a:t></a:r></a:p></p:txBody>
    </p:sp>`

	bodySP = `
    <p:sp>
      <p:nvSpPr><p:cNvPr id="3" name="Content 2"/><p:cNvSpPr/><p:nvPr><p:ph idx="1"/></p:nvPr></p:nvSpPr>
      <p:spPr/>
      <p:txBody><a:bodyPr/>
        <a:p><a:r><a:t>Revenue</a:t></a:r></a:p>
        <a:p><a:pPr lvl="1"><a:buAutoNum type="arabicPeriod" startAt="3"/></a:pPr><a:r><a:t>Up </a:t></a:r><a:r><a:t>10%</a:t></a:r></a:p>
        <a:p><a:r><a:t>Costs</a:t></a:r></a:p>
      </p:txBody>
    </p:sp>`

	picXML = `
    <p:pic>
      <p:nvPicPr><p:cNvPr id="4" name="Picture 3" descr="Company logo"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr>
      <p:blipFill><a:blip r:embed="rIdImg"/></p:blipFill>
      <p:spPr><a:xfrm><a:off x="952500" y="952500"/><a:ext cx="38100" cy="19050"/></a:xfrm></p:spPr>
    </p:pic>`

	tableFrame = `
    <p:graphicFrame>
      <p:nvGraphicFramePr><p:cNvPr id="5" name="Table 4"/><p:cNvGraphicFramePr/><p:nvPr/></p:nvGraphicFramePr>
      <p:xfrm><a:off x="0" y="952500"/><a:ext cx="1905000" cy="952500"/></p:xfrm>
      <a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/table"><a:tbl>
        <a:tr h="0"><a:tc><a:txBody><a:bodyPr/><a:p><a:r><a:t>Quarter</a:t></a:r></a:p></a:txBody></a:tc><a:tc><a:txBody><a:bodyPr/><a:p><a:r><a:t>Sales &amp; more</a:t></a:r></a:p></a:txBody></a:tc></a:tr>
        <a:tr h="0"><a:tc><a:txBody><a:bodyPr/><a:p><a:r><a:t>Q1</a:t></a:r></a:p></a:txBody></a:tc><a:tc><a:txBody><a:bodyPr/><a:p><a:r><a:t>10</a:t></a:r></a:p></a:txBody></a:tc></a:tr>
      </a:tbl></a:graphicData></a:graphic>
    </p:graphicFrame>`

	connector = `
    <p:cxnSp>
      <p:nvCxnSpPr><p:cNvPr id="6" name="Connector 5"/><p:cNvCxnSpPr/><p:nvPr/></p:nvCxnSpPr>
      <p:spPr><a:xfrm><a:off x="1905000" y="952500"/><a:ext cx="952500" cy="0"/></a:xfrm></p:spPr>
    </p:cxnSp>`

	slideRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rIdImg" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="../media/image1.png"/>
</Relationships>`
)

// fixtureSlide is one slide part of a test package, in presentation order.
type fixtureSlide struct {
	part string
	body string
	// rels replaces the default slide relationships when set.
	rels string
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// writePptx writes a minimal presentation package to dir and returns its path.
func writePptx(t *testing.T, dir string, slides []fixtureSlide) string {
	t.Helper()

	var ids, presRels strings.Builder
	presRels.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	parts := map[string]string{}
	for i, s := range slides {
		rid := "rIdS" + string(rune('a'+i))
		ids.WriteString(`<p:sldId id="` + string(rune('0'+i)) + `" r:id="` + rid + `"/>`)
		presRels.WriteString(`<Relationship Id="` + rid + `" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="` + strings.TrimPrefix(s.part, "ppt/") + `"/>`)
		parts[s.part] = slideHeader + s.body + slideFooter
		rels := s.rels
		if rels == "" {
			rels = slideRels
		}
		parts[strings.Replace(s.part, "slides/", "slides/_rels/", 1)+".rels"] = rels
	}
	presRels.WriteString(`</Relationships>`)
	parts["ppt/presentation.xml"] = strings.Replace(presentationXML, "%s", ids.String(), 1)
	parts["ppt/_rels/presentation.xml.rels"] = presRels.String()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	w, err := zw.Create("ppt/media/image1.png")
	require.NoError(t, err)
	_, err = w.Write(testPNG(t))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(dir, "deck.pptx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func fixtureDeck(t *testing.T, dir string) string {
	return writePptx(t, dir, []fixtureSlide{
		{part: "ppt/slides/slide1.xml", body: strings.Replace(titleSP, "%s", "Quarterly</a:t></a:r><a:br/><a:r><a:t>Review", 1) + bodySP + picXML},
		{part: "ppt/slides/slide2.xml", body: strings.Replace(titleSP, "%s", "Details", 1) + tableFrame + connector + picXML},
	})
}

func TestPptxExtract(t *testing.T) {
	dir := t.TempDir()
	imageDir := filepath.Join(dir, "images")
	c := New(WithImageDir(imageDir), WithLogger(quietLogger))

	slides, err := c.Extract(fixtureDeck(t, dir))
	require.NoError(t, err)
	require.Len(t, slides, 2)

	s1 := slides[0].Shapes
	require.Len(t, s1, 3)
	assert.Equal(t, TypeTitleText, s1[0].ShapeType)
	assert.Equal(t, "Quarterly\nReview", s1[0].Text())

	assert.Equal(t, TypeOutliner, s1[1].ShapeType)
	assert.Equal(t, "Revenue\nUp 10%\nCosts", s1[1].Text())
	assert.Equal(t, ElementTypeTextRange, s1[1].ElementType)
	require.Len(t, s1[1].Elements, 3)
	assert.Nil(t, s1[1].Elements[0].NumberingLevel)
	assert.Equal(t, ListItem{String: "Up 10%", NumberingLevel: level(1), NumberingIsNumber: true, NumberingStartValue: 3}, s1[1].Elements[1])
	assert.Equal(t, "Costs", s1[1].Elements[2].String)

	pic := s1[2]
	assert.True(t, pic.Graphic)
	assert.Equal(t, "Company logo", pic.Text())
	assert.Equal(t, "ppt/media/image1.png", pic.GraphicURL)
	assert.Equal(t, "ppt/slides/slide1.xml#rIdImg", pic.GraphicStreamURL)
	assert.Equal(t, "image/png", pic.MimeType)
	assert.Equal(t, int64(4), pic.Width)
	assert.Equal(t, int64(2), pic.Height)
	assert.Equal(t, filepath.Join(imageDir, "graphic-s001-g003.png"), pic.ExportedFilename)

	exported, err := os.ReadFile(pic.ExportedFilename)
	require.NoError(t, err)
	assert.Equal(t, testPNG(t), exported)

	// The table and the connector are merged into one group in their place.
	s2 := slides[1].Shapes
	require.Len(t, s2, 3)
	assert.Equal(t, TypeTitleText, s2[0].ShapeType)
	assert.Equal(t, TypeGroup, s2[1].ShapeType)
	assert.Equal(t, filepath.Join(imageDir, "graphic-s002-g002.svg"), s2[1].ExportedSvgFilename)
	assert.Equal(t, pic.ExportedFilename, s2[2].ExportedFilename, "the logo is exported once")

	svg, err := os.ReadFile(s2[1].ExportedSvgFilename)
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")
	assert.Contains(t, string(svg), "Quarter | Sales &amp; more")
	assert.Contains(t, string(svg), "<line")

	entries, err := os.ReadDir(imageDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestPptxConvert(t *testing.T) {
	dir := t.TempDir()
	imageDir := filepath.Join(dir, "images")
	c := New(WithImageDir(imageDir), WithLogger(quietLogger))

	var out strings.Builder
	require.NoError(t, c.Convert(fixtureDeck(t, dir), &out))

	logo := filepath.Join(imageDir, "graphic-s001-g003.png")
	want := "### Quarterly Review\n\n" +
		"-   Revenue\n    -   Up 10%\n-   Costs\n\n" +
		"![Company logo](" + logo + ")\n\n" +
		"### Details\n\n" +
		"![](" + filepath.Join(imageDir, "graphic-s002-g002.svg") + ")\n\n" +
		"![Company logo](" + logo + ")\n\n"
	assert.Equal(t, want, out.String())
}

func TestPptxSlideOrderFollowsPresentation(t *testing.T) {
	dir := t.TempDir()
	path := writePptx(t, dir, []fixtureSlide{
		{part: "ppt/slides/slide2.xml", body: strings.Replace(titleSP, "%s", "Shown first", 1)},
		{part: "ppt/slides/slide1.xml", body: strings.Replace(titleSP, "%s", "Shown second", 1)},
	})

	doc, err := NewPptxProvider().Open(path)
	require.NoError(t, err)
	defer doc.Close()

	require.Equal(t, 2, doc.PageCount())
	for i, want := range []string{"Shown first", "Shown second"} {
		page, err := doc.Page(i)
		require.NoError(t, err)
		shape, err := page.ShapeAt(0)
		require.NoError(t, err)
		text, err := shape.Text()
		require.NoError(t, err)
		assert.Equal(t, want, text)
	}

	_, err = doc.Page(2)
	assert.Error(t, err)
}

func TestPptxShapeTaxonomy(t *testing.T) {
	textBox := `
    <p:sp>
      <p:nvSpPr><p:cNvPr id="7" name="TextBox 6"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>
      <p:spPr/>
      <p:txBody><a:bodyPr/><a:p><a:r><a:t>note</a:t></a:r></a:p></p:txBody>
    </p:sp>`
	rect := `
    <p:sp>
      <p:nvSpPr><p:cNvPr id="8" name="Rectangle 7"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr>
      <p:spPr/>
    </p:sp>`
	subtitle := strings.Replace(strings.Replace(titleSP, `type="title"`, `type="subTitle"`, 1), "%s", "sub", 1)

	dir := t.TempDir()
	path := writePptx(t, dir, []fixtureSlide{{part: "ppt/slides/slide1.xml", body: subtitle + textBox + rect + connector + tableFrame}})

	doc, err := NewPptxProvider().Open(path)
	require.NoError(t, err)
	defer doc.Close()

	page, err := doc.Page(0)
	require.NoError(t, err)

	var types []string
	for i := 0; i < page.Count(); i++ {
		s, err := page.ShapeAt(i)
		require.NoError(t, err)
		types = append(types, s.ShapeType())
	}
	assert.Equal(t, []string{TypeSubtitle, TypeText, TypeCustom, TypeLine, TypeTable}, types)

	table, err := page.ShapeAt(4)
	require.NoError(t, err)
	_, err = table.Text()
	assert.ErrorIs(t, err, errNoText)
}

func TestPptxProviderAccepts(t *testing.T) {
	p := NewPptxProvider()
	assert.True(t, p.Accepts(StreamInfo{Extension: ".pptx"}))
	assert.True(t, p.Accepts(StreamInfo{Extension: ".pptm"}))
	assert.True(t, p.Accepts(StreamInfo{MIMEType: "application/vnd.openxmlformats-officedocument.presentationml.presentation"}))
	assert.False(t, p.Accepts(StreamInfo{Extension: ".docx", MIMEType: "application/zip"}))
}

func TestOpenUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))

	_, err := New(WithLogger(quietLogger)).Extract(path)
	require.Error(t, err)
	assert.True(t, IsUnsupportedFormat(err))
}

func TestOpenBrokenPackage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.pptx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))

	_, err := New(WithLogger(quietLogger)).Extract(path)
	require.Error(t, err)

	var oe *OpenError
	require.ErrorAs(t, err, &oe)
	require.Len(t, oe.Attempts, 1)
	assert.Equal(t, "pptx", oe.Attempts[0].Provider)
}

func TestPptxLinkedPictures(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logo.png"), testPNG(t), 0o644))

	rels := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rIdLocal" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="logo.png" TargetMode="External"/>
  <Relationship Id="rIdRemote" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="https://example.com/banner.png" TargetMode="External"/>
</Relationships>`
	local := strings.Replace(picXML, `r:embed="rIdImg"`, `r:link="rIdLocal"`, 1)
	remote := strings.Replace(picXML, `r:embed="rIdImg"`, `r:link="rIdRemote"`, 1)
	path := writePptx(t, dir, []fixtureSlide{{part: "ppt/slides/slide1.xml", body: local + remote, rels: rels}})

	imageDir := filepath.Join(dir, "images")
	c := New(WithImageDir(imageDir), WithLogger(quietLogger))
	slides, err := c.Extract(path)
	require.NoError(t, err)
	require.Len(t, slides[0].Shapes, 2)

	linked := slides[0].Shapes[0]
	assert.Equal(t, "logo.png", linked.GraphicURL)
	assert.Equal(t, "image/png", linked.MimeType)
	assert.Equal(t, int64(4), linked.Width)
	assert.Equal(t, filepath.Join(imageDir, "graphic-s001-g001.png"), linked.ExportedFilename)
	data, err := os.ReadFile(linked.ExportedFilename)
	require.NoError(t, err)
	assert.Equal(t, testPNG(t), data)

	// A link that cannot be read exports as a placeholder drawing.
	unreachable := slides[0].Shapes[1]
	assert.Equal(t, "https://example.com/banner.png", unreachable.GraphicURL)
	assert.Equal(t, "image/svg+xml", unreachable.MimeType)
	assert.Equal(t, filepath.Join(imageDir, "graphic-s001-g002.svg"), unreachable.ExportedFilename)
	svg, err := os.ReadFile(unreachable.ExportedFilename)
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<rect")

	md, err := NewRenderer(quietLogger).RenderString(slides)
	require.NoError(t, err)
	assert.Equal(t, "### SLIDE\n\n"+
		"![Company logo]("+linked.ExportedFilename+")\n\n"+
		"![Company logo]("+unreachable.ExportedFilename+")\n\n", md)
}
