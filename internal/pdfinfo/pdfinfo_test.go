package pdfinfo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-chat/internal/pdfinfo/pdftest"
)

func TestInspect_PageCount(t *testing.T) {
	for _, n := range []int{1, 3} {
		pdf := pdftest.BlankPDF(n)
		info, err := Inspect(pdf)
		require.NoError(t, err)
		assert.Equal(t, n, info.Pages)
		assert.Equal(t, len(pdf), info.Bytes)
	}
}

func TestInspect_NotAPDF(t *testing.T) {
	_, err := Inspect([]byte("hello"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdfcpu read")
}

func TestExtractText_Lines(t *testing.T) {
	pdf := pdftest.TextPDF("Name: Ada Lovelace", "Email: ada@example.com", "Skills: Go (expert)")

	text, err := ExtractText(bytes.NewReader(pdf))
	require.NoError(t, err)
	assert.Equal(t, "Name: Ada Lovelace\nEmail: ada@example.com\nSkills: Go (expert)", text)
}

func TestTextFromStream(t *testing.T) {
	stream := []byte("BT\n/F1 12 Tf\n72 720 Td\n(Hello) Tj\n[( Wor) -20 (ld)] TJ\nT*\n(Next\\) line) Tj\nET")
	assert.Equal(t, "Hello World\nNext) line", textFromStream(stream))
}
