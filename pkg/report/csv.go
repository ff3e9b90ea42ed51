// Package report renders finished audits for download.
package report

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"site-audit-be/pkg/audit"
	"site-audit-be/pkg/survey"
)

var csvHeader = []string{"Projet", "Phase", "Question_ID", "Réponse"}

// CSV writes one row per non-file answer, phases in commit order and
// answers by question id.
func CSV(project string, collected []survey.PhaseRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, phase := range collected {
		for _, id := range audit.SortedIDs(phase.Answers) {
			a := phase.Answers[id]
			if a.Kind == survey.KindFiles {
				continue
			}
			if err := w.Write([]string{project, phase.PhaseName, strconv.Itoa(id), a.String()}); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
