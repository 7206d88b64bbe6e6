package report

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	apperrors "github.com/jwalitptl/liver-report/pkg/errors"
)

// FilenameSuffix is appended to the patient name to build the report filename.
const FilenameSuffix = "_Liver_Cirrhosis_Report.pdf"

const ContentTypePDF = "application/pdf"

// whitespaceRun matches the browser notion of \s, which includes the
// Unicode space separators.
var whitespaceRun = regexp.MustCompile(`[\s\v\p{Zs}\x{FEFF}\x{2028}\x{2029}]+`)

// Report is a downloaded report ready to be written or streamed.
type Report struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Filename replaces each run of whitespace in the patient name with a
// single underscore and appends FilenameSuffix.
func Filename(patientName string) string {
	return whitespaceRun.ReplaceAllString(patientName, "_") + FilenameSuffix
}

// Saver writes reports into a directory.
type Saver struct {
	Dir  string
	Perm os.FileMode
}

func NewSaver(dir string) *Saver {
	return &Saver{Dir: dir, Perm: 0o644}
}

// Save writes r to Dir/r.Filename and returns the final path. The data
// goes to a temporary file first which is always removed unless it was
// renamed into place.
func (s *Saver) Save(r *Report) (string, error) {
	if r == nil || len(r.Data) == 0 {
		return "", apperrors.Save(fmt.Errorf("empty report payload"))
	}
	name := filepath.Base(r.Filename)
	if name == "." || name == string(filepath.Separator) || strings.TrimSpace(name) == "" {
		return "", apperrors.Save(fmt.Errorf("invalid report filename %q", r.Filename))
	}

	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperrors.Save(err)
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*.part")
	if err != nil {
		return "", apperrors.Save(err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(r.Data); err != nil {
		tmp.Close()
		return "", apperrors.Save(err)
	}
	if err := tmp.Close(); err != nil {
		return "", apperrors.Save(err)
	}
	perm := s.Perm
	if perm == 0 {
		perm = 0o644
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return "", apperrors.Save(err)
	}

	final := filepath.Join(dir, name)
	if err := os.Rename(tmpPath, final); err != nil {
		return "", apperrors.Save(err)
	}
	return final, nil
}
