package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"site-audit-be/internal/entity"
	"site-audit-be/internal/mapper"
	"site-audit-be/internal/model"
)

// Question sheet headers as exported from the spreadsheet.
const (
	colID             = "id"
	colSection        = "section"
	colQuestion       = "question"
	colType           = "type"
	colMandatory      = "obligatoire"
	colOptions        = "options"
	colDescription    = "description"
	colConditionOn    = "condition on"
	colConditionValue = "condition value"
)

func readSheet(r io.Reader) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("empty sheet")
	}
	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	return header, records[1:], nil
}

func cell(row []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ReadQuestions parses the question sheet. Headers match case-insensitively;
// rows without a section are skipped and their line numbers returned.
func ReadQuestions(r io.Reader) ([]*entity.Question, []int, error) {
	header, rows, err := readSheet(r)
	if err != nil {
		return nil, nil, err
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(h)] = i
	}
	for _, required := range []string{colID, colSection, colQuestion, colType} {
		if _, ok := idx[required]; !ok {
			return nil, nil, fmt.Errorf("question sheet: missing column %q", required)
		}
	}

	m := mapper.NewQuestionMapper()
	var (
		questions []*entity.Question
		skipped   []int
	)
	for n, row := range rows {
		section := cell(row, idx, colSection)
		if section == "" {
			skipped = append(skipped, n+2)
			continue
		}
		questions = append(questions, m.ToEntity(&model.QuestionRow{
			QuestionId:     cell(row, idx, colID),
			Section:        section,
			Question:       cell(row, idx, colQuestion),
			Type:           cell(row, idx, colType),
			Obligatoire:    cell(row, idx, colMandatory),
			Options:        cell(row, idx, colOptions),
			Description:    cell(row, idx, colDescription),
			ConditionOn:    cell(row, idx, colConditionOn),
			ConditionValue: cell(row, idx, colConditionValue),
			Position:       len(questions),
		}))
	}
	return questions, skipped, nil
}

// ReadSites parses the site sheet. Every column is kept as a field; the
// labelField column names the site. Rows without a label are dropped.
func ReadSites(r io.Reader, labelField string) ([]*entity.Site, error) {
	header, rows, err := readSheet(r)
	if err != nil {
		return nil, err
	}
	labelCol := -1
	for i, h := range header {
		if h == labelField {
			labelCol = i
		}
	}
	if labelCol < 0 {
		return nil, fmt.Errorf("site sheet: missing column %q", labelField)
	}

	var sites []*entity.Site
	for _, row := range rows {
		if labelCol >= len(row) || strings.TrimSpace(row[labelCol]) == "" {
			continue
		}
		fields := make(map[string]string, len(header))
		for i, h := range header {
			if h == "" || i >= len(row) {
				continue
			}
			fields[h] = strings.TrimSpace(row[i])
		}
		sites = append(sites, &entity.Site{
			Label:    strings.TrimSpace(row[labelCol]),
			Fields:   fields,
			Position: len(sites),
		})
	}
	return sites, nil
}
