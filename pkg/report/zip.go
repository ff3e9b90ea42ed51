package report

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"site-audit-be/pkg/audit"
	"site-audit-be/pkg/survey"
)

// Opener returns the content of an uploaded file.
type Opener func(ref survey.FileRef) (io.ReadCloser, error)

// PhotoName is the archive entry name of the i-th photo of a question.
func PhotoName(phase string, questionID, i int, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("%s_Q%d_%d%s", phase, questionID, i, ext)
}

// Zip packs every uploaded photo of the audit. It returns the archive and
// the number of photos written. Repeats of a phase are numbered from the
// second occurrence on so entry names stay unique.
func Zip(collected []survey.PhaseRecord, open Opener) ([]byte, int, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	count := 0
	seen := make(map[string]int)
	for _, phase := range collected {
		seen[phase.PhaseName]++
		prefix := phase.PhaseName
		if n := seen[phase.PhaseName]; n > 1 {
			prefix = fmt.Sprintf("%s (%d)", phase.PhaseName, n)
		}
		for _, id := range audit.SortedIDs(phase.Answers) {
			a := phase.Answers[id]
			if a.Kind != survey.KindFiles {
				continue
			}
			for i, f := range a.Files {
				if err := addFile(zw, PhotoName(prefix, id, i, f.Name), f, open); err != nil {
					zw.Close()
					return nil, 0, err
				}
				count++
			}
		}
	}
	if err := zw.Close(); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), count, nil
}

func addFile(zw *zip.Writer, name string, ref survey.FileRef, open Opener) error {
	src, err := open(ref)
	if err != nil {
		return fmt.Errorf("opening %s: %w", ref.Name, err)
	}
	defer src.Close()

	dst, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, src)
	return err
}
