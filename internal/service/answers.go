package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"site-audit-be/pkg/audit"
	"site-audit-be/pkg/survey"
)

// decodeAnswers types raw request values against the catalog.
func decodeAnswers(cat *survey.Catalog, raw map[string]json.RawMessage) (survey.Answers, error) {
	out := make(survey.Answers, len(raw))
	for key, value := range raw {
		id, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a question id", audit.ErrUnknownQuestion, key)
		}
		qType := survey.TypeText
		if id != survey.CommentQuestionID {
			q, ok := cat.Question(id)
			if !ok {
				return nil, fmt.Errorf("%w: %d", audit.ErrUnknownQuestion, id)
			}
			qType = q.Type
		}
		a, err := decodeAnswer(qType, value)
		if err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", audit.ErrInvalidAnswer, id, err)
		}
		out[id] = a
	}
	return out, nil
}

func decodeAnswer(qType survey.QuestionType, raw json.RawMessage) (survey.Answer, error) {
	raw = bytes.TrimSpace(raw)
	isNull := len(raw) == 0 || bytes.Equal(raw, []byte("null"))

	switch qType {
	case survey.TypePhoto:
		return survey.Answer{}, fmt.Errorf("photos are uploaded, not sent as values")
	case survey.TypeNumber:
		if isNull {
			return survey.NumberAnswer(0), nil
		}
		var n float64
		if err := json.Unmarshal(raw, &n); err == nil {
			return survey.NumberAnswer(n), nil
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return survey.Answer{}, fmt.Errorf("expected a number")
		}
		s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
		if s == "" {
			return survey.NumberAnswer(0), nil
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return survey.Answer{}, fmt.Errorf("expected a number, got %q", s)
		}
		return survey.NumberAnswer(n), nil
	default:
		if isNull {
			return survey.TextAnswer(""), nil
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return survey.TextAnswer(s), nil
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			return survey.TextAnswer(n.String()), nil
		}
		return survey.Answer{}, fmt.Errorf("expected text")
	}
}
