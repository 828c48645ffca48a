// Package extractor pulls raw text out of statement PDFs. The parser only
// needs one string of page text; layout fidelity matters less than getting
// readable characters out of the file.
package extractor

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// ExtractText reads a PDF file and returns its text content as one string.
// The structured library is tried first; if it fails or produces garbage
// (custom font encodings are common in bank PDFs), the external pdftotext
// command (poppler-utils) is used as a fallback. Scanned image-only PDFs
// are not supported.
func ExtractText(filePath string) (string, error) {
	text, libErr := extractWithLibrary(filePath)
	if libErr == nil && isReadableText(text) {
		return text, nil
	}

	text, popplerErr := extractWithPdftotext(filePath)
	if popplerErr == nil && isReadableText(text) {
		return text, nil
	}

	if libErr != nil {
		return "", fmt.Errorf("PDF text extraction failed: %v; the file may be image-based or use font encodings that cannot be decoded", libErr)
	}
	return "", fmt.Errorf("no readable text could be extracted from PDF; the file may be image-based/scanned")
}

// extractWithLibrary uses the ledongthuc/pdf library, trying row-grouped
// extraction first and plain text second.
func extractWithLibrary(filePath string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	f, r, openErr := pdf.Open(filePath)
	if openErr != nil {
		return "", openErr
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return "", fmt.Errorf("PDF has no pages")
	}

	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, rowErr := page.GetTextByRow()
		if rowErr != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			var parts []string
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}

	text = strings.Join(pages, "\n")
	if isReadableText(text) {
		return text, nil
	}

	reader, plainErr := r.GetPlainText()
	if plainErr != nil {
		return text, nil
	}
	var buf bytes.Buffer
	if _, copyErr := io.Copy(&buf, reader); copyErr != nil {
		return text, nil
	}
	if isReadableText(buf.String()) {
		return buf.String(), nil
	}
	return text, nil
}

// extractWithPdftotext shells out to poppler-utils.
func extractWithPdftotext(filePath string) (string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return "", fmt.Errorf("pdftotext not available: %v", err)
	}
	out, err := exec.Command("pdftotext", "-layout", filePath, "-").Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %v", err)
	}
	text := strings.TrimSpace(string(out))
	if text == "" {
		return "", fmt.Errorf("pdftotext produced no output")
	}
	return text, nil
}

// statementWords appear in virtually every Russian bank statement. If the
// extracted text contains none of them, it is likely mojibake from an
// identity-encoded font.
var statementWords = []string{
	"выписка", "операци", "дата", "сумма", "остаток", "счет", "счёт",
	"карта", "statement", "date", "amount", "₽",
}

// isReadableText checks that the text is long enough, mostly made of
// letters, digits and punctuation, and mentions at least one word a bank
// statement would contain.
func isReadableText(text string) bool {
	if len(text) <= 50 {
		return false
	}

	total, readable := 0, 0
	for _, r := range text {
		total++
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) ||
			unicode.IsPunct(r) || r == '₽' || r == '+' || r == '€' || r == '$' {
			readable++
		}
	}
	if total == 0 || float64(readable)/float64(total) <= 0.6 {
		return false
	}

	lower := strings.ToLower(text)
	for _, word := range statementWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
