// Package pdfdoc раскладывает отрендеренный шаблон (договор, счёт) в A4 PDF
// с QR-кодом ссылки на страницу отслеживания.
package pdfdoc

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"
)

const (
	qrImageName = "tracking_qr"
	qrSizeMM    = 32.0
	qrPixels    = 256
	marginMM    = 20.0
)

type Document struct {
	Title string
	// Body — текст шаблона после подстановки; HTML-теги отбрасываются.
	Body string
	// QRContent обычно ссылка отслеживания; пустая строка отключает QR.
	QRContent string
	Footer    string
}

var (
	breakTags = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</div>|</h[1-6]>|</li>|</tr>`)
	anyTag    = regexp.MustCompile(`<[^>]*>`)
	manyLines = regexp.MustCompile(`\n{3,}`)
)

// PlainText превращает HTML-шаблон в текст для PDF.
func PlainText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = breakTags.ReplaceAllString(s, "\n")
	s = anyTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = manyLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func Render(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginMM, marginMM, marginMM)
	pdf.SetAutoPageBreak(true, marginMM)
	// встроенные шрифты — cp1252, остальное заменяется
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		if doc.Footer == "" {
			return
		}
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 10, tr(doc.Footer), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	textW := pageW - 2*marginMM

	if doc.QRContent != "" {
		png, err := qrcode.Encode(doc.QRContent, qrcode.Medium, qrPixels)
		if err != nil {
			return nil, errors.Wrap(err, "encode qr")
		}
		opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
		pdf.RegisterImageOptionsReader(qrImageName, opts, bytes.NewReader(png))
		pdf.ImageOptions(qrImageName, pageW-marginMM-qrSizeMM, marginMM, qrSizeMM, qrSizeMM, false, opts, 0, doc.QRContent)
		textW -= qrSizeMM + 5
	}

	if doc.Title != "" {
		pdf.SetFont("Arial", "B", 16)
		pdf.MultiCell(textW, 8, tr(doc.Title), "", "L", false)
		pdf.Ln(4)
	}
	if doc.QRContent != "" && pdf.GetY() < marginMM+qrSizeMM+4 {
		pdf.SetY(marginMM + qrSizeMM + 4)
	}

	pdf.SetFont("Arial", "", 11)
	pdf.MultiCell(0, 6, tr(PlainText(doc.Body)), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "render pdf")
	}
	return buf.Bytes(), nil
}
