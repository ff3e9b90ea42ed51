package entity

import "site-audit-be/pkg/survey"

// Question is a typed schema row. RawID keeps the id cell as written so
// non-numeric ids can be reported.
type Question struct {
	survey.Question
	RawID    string
	Position int
}
