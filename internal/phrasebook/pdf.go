package phrasebook

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

// RenderPDF lays out every category with its phrases as a letter-size PDF.
func RenderPDF(b *Book, language string) ([]byte, error) {
	if b == nil {
		return nil, fmt.Errorf("phrasebook is nil")
	}
	code := strings.ToUpper(strings.TrimSpace(language))
	if code == "" {
		code = "ES"
	}

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(72, 72, 72)
	pdf.SetAutoPageBreak(true, 72)
	pdf.SetTitle("Phrasebook - "+code, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 30, tr("Phrasebook - "+code), "", 1, "C", false, 0, "")
	pdf.Ln(12)

	phrases := b.PhrasesByCategory()
	for _, category := range b.Categories {
		pdf.SetFont("Helvetica", "B", 16)
		pdf.CellFormat(0, 22, tr(category.Name), "", 1, "L", false, 0, "")
		pdf.Ln(6)

		for _, phrase := range phrases[category.ID] {
			pdf.SetFont("Helvetica", "B", 10)
			label := tr(phrase.English + ": ")
			pdf.Write(14, label)
			pdf.SetFont("Helvetica", "", 10)
			pdf.Write(14, tr(fmt.Sprintf("%s (%s)", phrase.Translation, phrase.Pronunciation)))
			pdf.Ln(17)
		}
		pdf.Ln(12)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render phrasebook pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// PDFFilename is the attachment name for a language's phrasebook.
func PDFFilename(language string) string {
	code := strings.ToLower(strings.TrimSpace(language))
	if code == "" {
		code = "es"
	}
	return code + "_phrasebook.pdf"
}
