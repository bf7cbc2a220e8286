package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextPlainVerbatim(t *testing.T) {
	raw := "line one\nline two\n"
	content, err := Text("text/plain", "notes.txt", []byte(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, content)
}

func TestTextPlainWithCharsetParameter(t *testing.T) {
	content, err := Text("text/plain; charset=utf-8", "notes.txt", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", content)
}

func TestTextMarkdownStripsSyntax(t *testing.T) {
	md := "# Title\n\nSome *emphasized* text with a [link](https://example.com).\n"
	content, err := Text("text/markdown", "doc.md", []byte(md))
	require.NoError(t, err)

	assert.Contains(t, content, "Title")
	assert.Contains(t, content, "emphasized")
	assert.Contains(t, content, "link")
	assert.NotContains(t, content, "# Title")
	assert.NotContains(t, content, "*emphasized*")
	assert.NotContains(t, content, "https://example.com)")
}

func TestTextMarkdownByExtension(t *testing.T) {
	content, err := Text("application/octet-stream", "README.md", []byte("plain words"))
	require.NoError(t, err)
	assert.Equal(t, "plain words", content)
}

func TestTextUnsupportedType(t *testing.T) {
	_, err := Text("application/pdf", "paper.pdf", []byte("%PDF-1.4"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = Text("image/png", "cat.png", []byte{0x89, 0x50})
	assert.ErrorIs(t, err, ErrUnsupportedType)
}
