package docx

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ns = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractTextParagraphsAndTables(t *testing.T) {
	doc := buildDocx(t, `<?xml version="1.0"?>
<w:document `+ns+`><w:body>
  <w:p><w:r><w:t>STATEMENT OF FACTS</w:t></w:r></w:p>
  <w:p><w:r><w:t>Vessel: </w:t></w:r><w:r><w:t>MV Aurora</w:t></w:r></w:p>
  <w:p><w:r><w:t>   </w:t></w:r></w:p>
  <w:tbl><w:tr>
    <w:tc><w:p><w:r><w:t>Loading commenced</w:t></w:r></w:p></w:tc>
    <w:tc><w:p><w:r><w:t>08:00</w:t></w:r></w:p></w:tc>
  </w:tr></w:tbl>
</w:body></w:document>`)

	text, err := ExtractText(doc)
	require.NoError(t, err)
	assert.Equal(t, "STATEMENT OF FACTS\nVessel: MV Aurora\nLoading commenced\n08:00", text)
}

func TestExtractTextMultiParagraphCell(t *testing.T) {
	doc := buildDocx(t, `<w:document `+ns+`><w:body>
  <w:tbl><w:tr><w:tc>
    <w:p><w:r><w:t>line one</w:t></w:r></w:p>
    <w:p><w:r><w:t>line two</w:t></w:r></w:p>
  </w:tc></w:tr></w:tbl>
</w:body></w:document>`)

	text, err := ExtractText(doc)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", text)
}

func TestExtractTextNotAZip(t *testing.T) {
	_, err := ExtractText([]byte("definitely not a zip archive"))
	assert.Error(t, err)
}

func TestExtractTextMissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	_, _ = w.Write([]byte("<styles/>"))
	require.NoError(t, zw.Close())

	_, err = ExtractText(buf.Bytes())
	assert.Error(t, err)
}
