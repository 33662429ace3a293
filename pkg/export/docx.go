package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/JBK2116/CollaBoard/pkg/models"
)

// The DOCX renderer writes WordprocessingML directly: a .docx file is a
// zip of XML parts, and the handful the summary needs fit in this file.
// Static parts are literals; word/document.xml is assembled per blob.

const docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
<Override PartName="/word/numbering.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"/>
</Types>`

const docxPackageRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const docxDocumentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering" Target="numbering.xml"/>
</Relationships>`

const docxStyles = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:docDefaults>
<w:rPrDefault><w:rPr><w:rFonts w:ascii="Calibri" w:hAnsi="Calibri"/><w:sz w:val="22"/></w:rPr></w:rPrDefault>
<w:pPrDefault><w:pPr><w:spacing w:after="160" w:line="259" w:lineRule="auto"/></w:pPr></w:pPrDefault>
</w:docDefaults>
<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>
<w:style w:type="paragraph" w:styleId="Title">
<w:name w:val="Title"/><w:basedOn w:val="Normal"/>
<w:pPr><w:spacing w:after="80"/><w:jc w:val="center"/></w:pPr>
<w:rPr><w:b/><w:sz w:val="52"/></w:rPr>
</w:style>
<w:style w:type="paragraph" w:styleId="Heading1">
<w:name w:val="heading 1"/><w:basedOn w:val="Normal"/>
<w:pPr><w:keepNext/><w:spacing w:before="240" w:after="120"/><w:outlineLvl w:val="0"/></w:pPr>
<w:rPr><w:b/><w:sz w:val="32"/></w:rPr>
</w:style>
<w:style w:type="paragraph" w:styleId="Heading2">
<w:name w:val="heading 2"/><w:basedOn w:val="Normal"/>
<w:pPr><w:keepNext/><w:spacing w:before="200" w:after="80"/><w:outlineLvl w:val="1"/></w:pPr>
<w:rPr><w:b/><w:sz w:val="28"/></w:rPr>
</w:style>
</w:styles>`

const docxNumbering = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:numbering xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:abstractNum w:abstractNumId="0">
<w:multiLevelType w:val="singleLevel"/>
<w:lvl w:ilvl="0">
<w:start w:val="1"/>
<w:numFmt w:val="decimal"/>
<w:lvlText w:val="%1."/>
<w:lvlJc w:val="left"/>
<w:pPr><w:ind w:left="720" w:hanging="360"/></w:pPr>
</w:lvl>
</w:abstractNum>
<w:num w:numId="1"><w:abstractNumId w:val="0"/></w:num>
</w:numbering>`

const (
	docxMutedColor   = `<w:color w:val="828282"/>`
	docxJcCenter     = `<w:jc w:val="center"/>`
	docxJcBoth       = `<w:jc w:val="both"/>`
	docxSeparatorPPr = `<w:pBdr><w:bottom w:val="single" w:sz="4" w:space="1" w:color="D2D2D2"/></w:pBdr>`
	docxPageBreak    = `<w:p><w:r><w:br w:type="page"/></w:r></w:p>`
	docxNumberedPPr  = `<w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr>`
	docxSectPr       = `<w:sectPr><w:pgSz w:w="11906" w:h="16838"/><w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440" w:header="720" w:footer="720" w:gutter="0"/></w:sectPr>`
)

const docxNoBorders = `<w:tblBorders>` +
	`<w:top w:val="none" w:sz="0" w:space="0" w:color="auto"/>` +
	`<w:left w:val="none" w:sz="0" w:space="0" w:color="auto"/>` +
	`<w:bottom w:val="none" w:sz="0" w:space="0" w:color="auto"/>` +
	`<w:right w:val="none" w:sz="0" w:space="0" w:color="auto"/>` +
	`<w:insideH w:val="none" w:sz="0" w:space="0" w:color="auto"/>` +
	`<w:insideV w:val="none" w:sz="0" w:space="0" w:color="auto"/>` +
	`</w:tblBorders>`

// RenderDOCX writes the summary as a Word document to outPath: title and
// description centered, a borderless metadata row, one heading-led section
// per question, and the key takeaways as a numbered list on a fresh page.
func RenderDOCX(blob *models.SummaryBlob, outPath string) error {
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outPath, err)
	}

	zw := zip.NewWriter(f)
	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", docxContentTypes},
		{"_rels/.rels", docxPackageRels},
		{"word/_rels/document.xml.rels", docxDocumentRels},
		{"word/styles.xml", docxStyles},
		{"word/numbering.xml", docxNumbering},
		{"word/document.xml", buildDocxDocument(blob)},
	}
	for _, part := range parts {
		if err := writeDocxPart(zw, part.name, part.content); err != nil {
			_ = zw.Close()
			_ = f.Close()
			return fmt.Errorf("failed to write DOCX part %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to finalize DOCX archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", outPath, err)
	}
	return nil
}

func writeDocxPart(zw *zip.Writer, name, content string) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: fixedTimestamp,
	})
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, content)
	return err
}

func buildDocxDocument(blob *models.SummaryBlob) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)

	b.WriteString(docxParagraph(`<w:pStyle w:val="Title"/>`, docxRun("", blob.MeetingTitle)))
	b.WriteString(docxParagraph(docxJcCenter, docxRun(docxMutedColor, blob.MeetingDescription)))
	b.WriteString(docxMetadataTable(blob))
	b.WriteString(docxPageBreak)

	for _, qa := range blob.QuestionsAnalysis {
		b.WriteString(docxParagraph(`<w:pStyle w:val="Heading2"/>`, docxRun("", qa.Question)))
		b.WriteString(docxParagraph("", docxRun(`<w:i/>`+docxMutedColor, fmt.Sprintf("Total Responses: %d", qa.ResponseCount))))
		b.WriteString(docxParagraph(docxJcBoth, docxRun("", qa.Summary)))
		b.WriteString(docxParagraph(docxSeparatorPPr))
	}

	b.WriteString(docxPageBreak)
	b.WriteString(docxParagraph(`<w:pStyle w:val="Heading1"/>`, docxRun("", "Key Takeaways")))
	for _, takeaway := range blob.KeyTakeaways {
		b.WriteString(docxParagraph(docxNumberedPPr, docxRun("", takeaway)))
	}

	b.WriteString(docxSectPr)
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

func docxMetadataTable(blob *models.SummaryBlob) string {
	cells := []string{
		"Date: " + blob.Date,
		"Created at: " + blob.TimeCreated,
		"Director: " + blob.Author,
	}
	var b strings.Builder
	b.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="0" w:type="auto"/><w:jc w:val="center"/>`)
	b.WriteString(docxNoBorders)
	b.WriteString(`</w:tblPr><w:tblGrid><w:gridCol w:w="3100"/><w:gridCol w:w="3100"/><w:gridCol w:w="3100"/></w:tblGrid><w:tr>`)
	for _, cell := range cells {
		b.WriteString(`<w:tc><w:tcPr><w:tcW w:w="3100" w:type="dxa"/></w:tcPr>`)
		b.WriteString(docxParagraph(docxJcCenter, docxRun(docxMutedColor, cell)))
		b.WriteString(`</w:tc>`)
	}
	b.WriteString(`</w:tr></w:tbl>`)
	return b.String()
}

func docxParagraph(props string, runs ...string) string {
	var b strings.Builder
	b.WriteString("<w:p>")
	if props != "" {
		b.WriteString("<w:pPr>" + props + "</w:pPr>")
	}
	for _, r := range runs {
		b.WriteString(r)
	}
	b.WriteString("</w:p>")
	return b.String()
}

func docxRun(props, text string) string {
	var b strings.Builder
	b.WriteString("<w:r>")
	if props != "" {
		b.WriteString("<w:rPr>" + props + "</w:rPr>")
	}
	b.WriteString(`<w:t xml:space="preserve">` + xmlEscape(text) + `</w:t>`)
	b.WriteString("</w:r>")
	return b.String()
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	// bytes.Buffer writes cannot fail
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
