package parser

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDocumentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>John</w:t></w:r><w:r><w:t xml:space="preserve"> Smith</w:t></w:r></w:p>
<w:p><w:r><w:t>Skills:</w:t><w:tab/><w:t>Python, SQL</w:t></w:r></w:p>
<w:p></w:p>
<w:p><w:r><w:t>jane.doe@example.com</w:t><w:br/><w:t>555-123-4567</w:t></w:r></w:p>
</w:body>
</w:document>`

const testDocumentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

// buildTestDocx 在内存中构造一个最小的 docx 压缩包
func buildTestDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range map[string]string{
		"word/document.xml":            documentXML,
		"word/_rels/document.xml.rels": testDocumentRels,
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDocxParagraphs(t *testing.T) {
	paragraphs, err := DocxParagraphs(testDocumentXML)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"John Smith",
		"Skills:\tPython, SQL",
		"",
		"jane.doe@example.com\n555-123-4567",
	}, paragraphs)
}

const textBoxDocumentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"
 xmlns:mc="http://schemas.openxmlformats.org/markup-compatibility/2006"
 xmlns:wps="http://schemas.microsoft.com/office/word/2010/wordprocessingShape"
 xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
<w:body>
<w:p><w:r><w:t xml:space="preserve">Before box </w:t></w:r><w:r><mc:AlternateContent><mc:Choice Requires="wps"><wps:txbx><w:txbxContent><w:p><w:r><w:t>John Smith</w:t></w:r></w:p></w:txbxContent></wps:txbx></mc:Choice><mc:Fallback><w:pict><w:txbxContent><w:p><w:r><w:t>John Smith</w:t></w:r></w:p></w:txbxContent></w:pict></mc:Fallback></mc:AlternateContent></w:r><w:r><w:t xml:space="preserve"> after box</w:t></w:r></w:p>
<w:p><w:r><w:drawing><a:p><a:r><a:t>chart label</a:t></a:r></a:p></w:drawing><w:t>Skills: Python</w:t></w:r></w:p>
</w:body>
</w:document>`

func TestDocxParagraphs_NestedTextBox(t *testing.T) {
	paragraphs, err := DocxParagraphs(textBoxDocumentXML)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Before box  after box",
		"John Smith",
		"Skills: Python",
	}, paragraphs)
}

func TestDocxParagraphs_UndeclaredPrefix(t *testing.T) {
	paragraphs, err := DocxParagraphs(`<w:body><w:p><w:r><w:t>Before box </w:t></w:r><w:txbxContent><w:p><w:r><w:t>John Smith</w:t></w:r></w:p></w:txbxContent><w:r><w:t> after box</w:t></w:r></w:p></w:body>`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Before box  after box", "John Smith"}, paragraphs)
}

func TestDocxParagraphs_Malformed(t *testing.T) {
	_, err := DocxParagraphs(`<w:document><w:p><w:t>broken`)
	assert.Error(t, err)
}

func TestDocxExtractor_ExtractTextFromBytes(t *testing.T) {
	e := NewDocxExtractor()
	data := buildTestDocx(t, testDocumentXML)

	text, meta, err := e.ExtractTextFromBytes(context.Background(), data, "cv.docx", map[string]interface{}{"batch": "b1"})
	require.NoError(t, err)
	assert.Equal(t, "John Smith\nSkills:\tPython, SQL\n\njane.doe@example.com\n555-123-4567", text)
	assert.Equal(t, 4, meta[MetaParagraphs])
	assert.Equal(t, "b1", meta["batch"])
}

func TestDocxExtractor_ExtractFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.docx")
	require.NoError(t, os.WriteFile(path, buildTestDocx(t, testDocumentXML), 0o644))

	text, meta, err := NewDocxExtractor().ExtractFromFile(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, text, "John Smith")
	assert.Equal(t, path, meta[MetaSourcePath])
}

func TestDocxExtractor_Errors(t *testing.T) {
	e := NewDocxExtractor()

	_, _, err := e.ExtractTextFromBytes(context.Background(), []byte("not a zip archive"), "bad.docx", nil)
	assert.Error(t, err)

	_, _, err = e.ExtractFromFile(context.Background(), filepath.Join(t.TempDir(), "missing.docx"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open DOCX file")
}
