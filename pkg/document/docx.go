// licita/pkg/document/docx.go

package document

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/fumiama/go-docx"

	"rgehrsitz/licita/pkg/logging"
)

// DefaultExportTitle is used when an export request carries no title.
const DefaultExportTitle = "Versao Sugerida"

// DefaultMaxInflatedBytes caps the decompressed size of a DOCX package when
// the caller gives no limit.
const DefaultMaxInflatedBytes int64 = 80 << 20

const docxMainPart = "word/document.xml"

// ErrDocumentTooLarge is returned when a DOCX inflates past its limit.
var ErrDocumentTooLarge = errors.New("document too large once decompressed")

// checkInflatedSize streams every zip entry once and fails as soon as the
// total decompressed size passes limit. Nothing is buffered.
func checkInflatedSize(zr *zip.Reader, limit int64) error {
	remaining := limit
	hasMain := false
	for _, f := range zr.File {
		if f.Name == docxMainPart {
			hasMain = true
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		n, err := io.Copy(io.Discard, io.LimitReader(rc, remaining+1))
		rc.Close()
		if err != nil {
			return err
		}
		if n > remaining {
			return fmt.Errorf("%w: more than %d bytes", ErrDocumentTooLarge, limit)
		}
		remaining -= n
	}
	if !hasMain {
		return errors.New("missing " + docxMainPart)
	}
	return nil
}

func extractDOCX(data []byte, limit int64) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed docx: %v", r)
		}
	}()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	if err := checkInflatedSize(zr, limit); err != nil {
		return "", err
	}

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var lines []string
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			lines = append(lines, it.String())
		case *docx.Table:
			lines = appendTable(lines, it)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// appendTable writes one line per cell paragraph, row by row.
func appendTable(lines []string, t *docx.Table) []string {
	for _, row := range t.TableRows {
		for _, cell := range row.TableCells {
			for _, p := range cell.Paragraphs {
				lines = append(lines, p.String())
			}
			for _, nested := range cell.Tables {
				lines = appendTable(lines, nested)
			}
		}
	}
	return lines
}

// WriteDOCX writes a Word document with the title as a bold heading
// followed by one paragraph per line of body.
func WriteDOCX(w io.Writer, title, body string) error {
	if strings.TrimSpace(title) == "" {
		title = DefaultExportTitle
	}

	doc := docx.New().WithDefaultTheme()
	doc.AddParagraph().Justification("center").AddText(title).Bold().Size("32")
	for _, line := range strings.Split(body, "\n") {
		doc.AddParagraph().AddText(strings.TrimSuffix(line, "\r"))
	}
	// Section properties close the body.
	doc.WithA4Page()

	if _, err := doc.WriteTo(w); err != nil {
		return logging.NewError(logging.ErrorTypeExport, "failed to write docx", err, nil)
	}
	return nil
}

var (
	whitespaceRun  = regexp.MustCompile(`\s+`)
	unsafeFilename = regexp.MustCompile(`["\\/:*?<>|[:cntrl:]]`)
)

// ExportFilename turns a title into the attachment name used for downloads.
// Characters that cannot appear in a quoted header value or a file name are
// dropped.
func ExportFilename(title string) string {
	name := strings.TrimSpace(unsafeFilename.ReplaceAllString(whitespaceRun.ReplaceAllString(title, " "), ""))
	if name == "" {
		name = DefaultExportTitle
	}
	return whitespaceRun.ReplaceAllString(name, "_") + ".docx"
}
