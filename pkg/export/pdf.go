package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"github.com/JBK2116/CollaBoard/pkg/models"
)

const pdfFontFamily = "dejavu"

// textRenderer pairs the active font family with the string mapping it
// needs. With an embedded TrueType font text passes through untouched;
// with the core Helvetica fallback it is transliterated to cp1252.
type textRenderer struct {
	family string
	tr     func(string) string
}

func newTextRenderer(pdf *fpdf.Fpdf, fontDir string) textRenderer {
	if fontDir != "" {
		if _, err := os.Stat(filepath.Join(fontDir, "DejaVuSans.ttf")); err == nil {
			pdf.AddUTF8Font(pdfFontFamily, "", "DejaVuSans.ttf")
			bold := "DejaVuSans-Bold.ttf"
			if _, err := os.Stat(filepath.Join(fontDir, bold)); err != nil {
				bold = "DejaVuSans.ttf"
			}
			pdf.AddUTF8Font(pdfFontFamily, "B", bold)
			italic := "DejaVuSans-Oblique.ttf"
			if _, err := os.Stat(filepath.Join(fontDir, italic)); err != nil {
				italic = "DejaVuSans.ttf"
			}
			pdf.AddUTF8Font(pdfFontFamily, "I", italic)
			return textRenderer{family: pdfFontFamily, tr: func(s string) string { return s }}
		}
	}
	return textRenderer{family: "helvetica", tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

// RenderPDF writes the summary as an A4 PDF to outPath. Page one is a
// title page; every following page carries a "Meeting Summary" header and
// a page-number footer. Each question gets its own section, and the key
// takeaways always start on a fresh page.
func RenderPDF(blob *models.SummaryBlob, outPath, fontDir string) error {
	pdf := fpdf.New("P", "mm", "A4", fontDir)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(fixedTimestamp)
	pdf.SetModificationDate(fixedTimestamp)
	pdf.SetTitle(blob.MeetingTitle, true)
	pdf.SetAutoPageBreak(true, 20)

	text := newTextRenderer(pdf, fontDir)

	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() == 1 {
			return
		}
		pdf.SetFont(text.family, "", 9)
		pdf.SetTextColor(130, 130, 130)
		pdf.CellFormat(0, 6, text.tr("Meeting Summary"), "", 1, "C", false, 0, "")
		pdf.Ln(4)
	})
	pdf.SetFooterFunc(func() {
		if pdf.PageNo() == 1 {
			return
		}
		pdf.SetY(-15)
		pdf.SetFont(text.family, "", 9)
		pdf.SetTextColor(130, 130, 130)
		pdf.CellFormat(0, 6, text.tr(fmt.Sprintf("Page %d", pdf.PageNo())), "", 0, "C", false, 0, "")
	})

	renderPDFTitlePage(pdf, text, blob)

	pdf.AddPage()
	for _, qa := range blob.QuestionsAnalysis {
		renderPDFQuestionSection(pdf, text, qa)
	}

	pdf.AddPage()
	renderPDFTakeaways(pdf, text, blob.KeyTakeaways)

	if pdf.Err() {
		return fmt.Errorf("failed to render PDF: %w", pdf.Error())
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("failed to write PDF to %s: %w", outPath, err)
	}
	return nil
}

func renderPDFTitlePage(pdf *fpdf.Fpdf, text textRenderer, blob *models.SummaryBlob) {
	pdf.AddPage()
	pdf.SetY(80)

	pdf.SetFont(text.family, "B", 26)
	pdf.SetTextColor(20, 20, 20)
	pdf.MultiCell(0, 12, text.tr(blob.MeetingTitle), "", "C", false)
	pdf.Ln(4)

	pdf.SetFont(text.family, "", 12)
	pdf.SetTextColor(130, 130, 130)
	pdf.MultiCell(0, 7, text.tr(blob.MeetingDescription), "", "C", false)
	pdf.Ln(14)

	pdf.SetFont(text.family, "", 11)
	pdf.SetTextColor(70, 70, 70)
	for _, line := range []string{
		"Date: " + blob.Date,
		"Created at: " + blob.TimeCreated,
		"Director: " + blob.Author,
	} {
		pdf.CellFormat(0, 7, text.tr(line), "", 1, "C", false, 0, "")
	}
}

func renderPDFQuestionSection(pdf *fpdf.Fpdf, text textRenderer, qa models.QuestionAnalysis) {
	pdf.SetFont(text.family, "B", 14)
	pdf.SetTextColor(20, 20, 20)
	pdf.MultiCell(0, 8, text.tr(qa.Question), "", "L", false)

	pdf.SetFont(text.family, "I", 10)
	pdf.SetTextColor(130, 130, 130)
	pdf.CellFormat(0, 6, text.tr(fmt.Sprintf("Total Responses: %d", qa.ResponseCount)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont(text.family, "", 11)
	pdf.SetTextColor(40, 40, 40)
	pdf.MultiCell(0, 6, text.tr(qa.Summary), "", "J", false)
	pdf.Ln(4)

	leftMargin, _, rightMargin, _ := pdf.GetMargins()
	pageWidth, _ := pdf.GetPageSize()
	pdf.SetDrawColor(210, 210, 210)
	pdf.SetLineWidth(0.2)
	pdf.Line(leftMargin, pdf.GetY(), pageWidth-rightMargin, pdf.GetY())
	pdf.Ln(8)
}

func renderPDFTakeaways(pdf *fpdf.Fpdf, text textRenderer, takeaways []string) {
	pdf.SetFont(text.family, "B", 16)
	pdf.SetTextColor(20, 20, 20)
	pdf.CellFormat(0, 10, text.tr("Key Takeaways"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont(text.family, "", 11)
	pdf.SetTextColor(40, 40, 40)
	for i, takeaway := range takeaways {
		pdf.MultiCell(0, 6, text.tr(fmt.Sprintf("%d. %s", i+1, takeaway)), "", "L", false)
		pdf.Ln(2)
	}
}
