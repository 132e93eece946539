package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildDocx assembles a minimal docx archive around the given document body.
func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(body))
	require.NoError(t, err)

	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const sampleDocumentXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>This agreement covers confidential information.</w:t></w:r></w:p>
<w:p><w:r><w:t>Both parties accept the obligations described.</w:t></w:r></w:p>
</w:body>
</w:document>`

func TestExtractDOCX(t *testing.T) {
	data := buildDocx(t, sampleDocumentXML)

	text, err := Text(context.Background(), data, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "nda.docx")
	require.NoError(t, err)

	assert.Contains(t, text, "This agreement covers confidential information.")
	assert.Contains(t, text, "Both parties accept the obligations described.")
	// Paragraph ends become newlines.
	assert.Contains(t, text, "information.\n")
}

func TestExtractDOCXFromGenericZipMime(t *testing.T) {
	data := buildDocx(t, sampleDocumentXML)

	text, err := Text(context.Background(), data, "application/octet-stream", "mystery.bin")
	require.NoError(t, err)
	assert.Contains(t, text, "confidential information")
}

func TestExtractDOCXMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("unrelated.txt")
	require.NoError(t, err)
	w.Write([]byte("nothing"))
	require.NoError(t, zw.Close())

	_, err = Text(context.Background(), buf.Bytes(), "", "broken.docx")
	require.Error(t, err)
}

func TestExtractUnsupportedType(t *testing.T) {
	_, err := Text(context.Background(), []byte("plain words"), "text/plain", "notes.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestExtractEmptyFile(t *testing.T) {
	_, err := Text(context.Background(), nil, "application/pdf", "empty.pdf")
	require.Error(t, err)
}

func TestExtractCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Text(ctx, []byte("%PDF-1.4 junk"), "application/pdf", "doc.pdf")
	require.ErrorIs(t, err, context.Canceled)
}

func TestExtractCorruptPDF(t *testing.T) {
	_, err := Text(context.Background(), []byte("%PDF-1.4 not actually a pdf"), "application/pdf", "doc.pdf")
	require.Error(t, err)
}

func TestNormalizeMimeType(t *testing.T) {
	docx := buildDocx(t, sampleDocumentXML)

	tests := []struct {
		name     string
		mime     string
		fileName string
		data     []byte
		expected string
	}{
		{"explicit pdf", "application/pdf", "a.bin", []byte("x"), mimePDF},
		{"pdf with charset", "application/pdf; charset=binary", "a", []byte("x"), mimePDF},
		{"explicit docx", mimeDOCX, "a.bin", []byte("x"), mimeDOCX},
		{"zip holding docx", "application/zip", "upload", docx, mimeDOCX},
		{"octet stream pdf magic", "application/octet-stream", "upload", []byte("%PDF-1.7 rest"), mimePDF},
		{"extension fallback pdf", "text/html", "scan.PDF", []byte("x"), mimePDF},
		{"extension fallback docx", "", "contract.docx", []byte("x"), mimeDOCX},
		{"unknown stays put", "text/plain", "notes.txt", []byte("x"), "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeMimeType(tt.mime, tt.fileName, tt.data)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestStripDocxXML(t *testing.T) {
	out := stripDocxXML(`<w:p><w:r><w:t>line one</w:t></w:r></w:p><w:p><w:r><w:t>line two</w:t></w:r></w:p>`)
	assert.Equal(t, "line one\nline two", out)
}
