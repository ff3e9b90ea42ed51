package specification

import "gorm.io/gorm"

type BySubmissionID struct {
	SubmissionID string
}

func (s BySubmissionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("submission_id = ?", s.SubmissionID)
}

type ByAuditorID struct {
	AuditorID string
}

func (s ByAuditorID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("auditor_id = ?", s.AuditorID)
}

type ByProjectLabel struct {
	Label string
}

func (s ByProjectLabel) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("project_label = ?", s.Label)
}

type BySiteLabel struct {
	Label string
}

func (s BySiteLabel) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("label = ?", s.Label)
}

// SheetOrder keeps rows in the order they were written to the sheet.
type SheetOrder struct{}

func (SheetOrder) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
