// licita/pkg/document/extract.go

package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding/charmap"

	"rgehrsitz/licita/pkg/logging"
)

const (
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEZip  = "application/zip"
	MIMEText = "text/plain"
)

var (
	ErrEmptyDocument     = errors.New("empty document")
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

type Kind string

const (
	KindPDF  Kind = "pdf"
	KindDOCX Kind = "docx"
	KindText Kind = "text"
)

// Detect sniffs the content first and falls back on the file extension for
// containers mimetype cannot tell apart (a DOCX written without the usual
// part order looks like a plain zip).
func Detect(name string, data []byte) (Kind, error) {
	mtype := mimetype.Detect(data)
	ext := strings.ToLower(filepath.Ext(name))

	switch {
	case mtype.Is(MIMEPDF):
		return KindPDF, nil
	case mtype.Is(MIMEDOCX):
		return KindDOCX, nil
	case mtype.Is(MIMEZip) && ext == ".docx":
		return KindDOCX, nil
	case isText(mtype):
		return KindText, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mtype.String())
}

// isText reports whether mtype is text/plain or one of its descendants,
// such as text/csv or text/html, which a tender saved as .txt can sniff as.
func isText(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is(MIMEText) {
			return true
		}
	}
	return false
}

// ExtractText returns the plain text of a PDF, DOCX or text file.
// Failures are reported as errors, never as partial text.
func ExtractText(name string, data []byte) (string, error) {
	return ExtractTextLimit(name, data, DefaultMaxInflatedBytes)
}

// ExtractTextLimit is ExtractText with an explicit cap on the decompressed
// size of DOCX packages.
func ExtractTextLimit(name string, data []byte, maxInflated int64) (string, error) {
	fields := map[string]interface{}{"file": name, "bytes": len(data)}
	if len(data) == 0 {
		return "", logging.NewError(logging.ErrorTypeExtract, "no content", ErrEmptyDocument, fields)
	}

	kind, err := Detect(name, data)
	if err != nil {
		return "", logging.NewError(logging.ErrorTypeExtract, "cannot detect document type", err, fields)
	}
	fields["kind"] = string(kind)

	var text string
	switch kind {
	case KindPDF:
		text, err = extractPDF(data)
	case KindDOCX:
		text, err = extractDOCX(data, maxInflated)
	case KindText:
		text, err = decodeText(data)
	}
	if err != nil {
		return "", logging.NewError(logging.ErrorTypeExtract, fmt.Sprintf("failed to read %s", kind), err, fields)
	}

	logging.Logger.Debug().Str("file", name).Str("kind", string(kind)).Int("chars", utf8.RuneCountInString(text)).Msg("Extracted document text")
	return text, nil
}

func extractPDF(data []byte) (text string, err error) {
	// The pdf package panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// decodeText accepts UTF-8 as is and reads anything else as Windows-1252,
// the usual encoding of legacy Portuguese text exports.
func decodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
