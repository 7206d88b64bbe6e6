package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jwalitptl/liver-report/pkg/errors"
)

func TestFilename(t *testing.T) {
	cases := map[string]string{
		"Jane  Doe":      "Jane_Doe_Liver_Cirrhosis_Report.pdf",
		"Jane Doe":       "Jane_Doe_Liver_Cirrhosis_Report.pdf",
		"Mary\tAnn  Lee": "Mary_Ann_Lee_Liver_Cirrhosis_Report.pdf",
		"Solo":           "Solo_Liver_Cirrhosis_Report.pdf",
		" padded name ":  "_padded_name__Liver_Cirrhosis_Report.pdf",
	}
	for in, want := range cases {
		assert.Equal(t, want, Filename(in), in)
	}
}

func TestFilenameUnicodeWhitespace(t *testing.T) {
	cases := map[string]string{
		"Jane\u00a0\u00a0Doe":  "Jane_Doe_Liver_Cirrhosis_Report.pdf",
		"Jane\vDoe":            "Jane_Doe_Liver_Cirrhosis_Report.pdf",
		"Jane\u3000Doe":        "Jane_Doe_Liver_Cirrhosis_Report.pdf",
		"Jane\u2009 \u200aDoe": "Jane_Doe_Liver_Cirrhosis_Report.pdf",
		"Jane\ufeffDoe":        "Jane_Doe_Liver_Cirrhosis_Report.pdf",
		"Jane\u2028\u2029Doe":  "Jane_Doe_Liver_Cirrhosis_Report.pdf",
		"Zoë\u1680Ñúñez":       "Zoë_Ñúñez_Liver_Cirrhosis_Report.pdf",
		"Jane\u200bDoe":        "Jane\u200bDoe_Liver_Cirrhosis_Report.pdf",
	}
	for in, want := range cases {
		assert.Equal(t, want, Filename(in), in)
	}
}

func TestSaverWritesFile(t *testing.T) {
	dir := t.TempDir()
	s := NewSaver(filepath.Join(dir, "reports"))

	path, err := s.Save(&Report{Filename: "Jane_Doe_Liver_Cirrhosis_Report.pdf", Data: []byte("%PDF-1.4")})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "reports", "Jane_Doe_Liver_Cirrhosis_Report.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	entries, err := os.ReadDir(filepath.Join(dir, "reports"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must be released")
}

func TestSaverRejectsEmptyPayload(t *testing.T) {
	s := NewSaver(t.TempDir())
	_, err := s.Save(&Report{Filename: "x.pdf"})
	assert.Equal(t, apperrors.ReasonSave, apperrors.ReasonOf(err))

	_, err = s.Save(nil)
	assert.Equal(t, apperrors.ReasonSave, apperrors.ReasonOf(err))
}

func TestSaverStripsDirectories(t *testing.T) {
	dir := t.TempDir()
	s := NewSaver(dir)

	path, err := s.Save(&Report{Filename: "../escape.pdf", Data: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "escape.pdf"), path)
}
