package config

import (
	"fmt"
	"os"

	"site-audit-be/pkg/survey"

	"gopkg.in/yaml.v3"
)

// AuditRules is the editable configuration of the audit engine.
type AuditRules struct {
	// Section name -> project fields summed into the expected photo count.
	PhotoRules map[string][]string `yaml:"photo_rules"`
	// Project field -> short label used in breakdowns and reports.
	FieldLabels map[string]string `yaml:"field_labels"`
	// Project fields shown on the report header, grouped.
	DisplayGroups [][]string `yaml:"display_groups"`
	// Section excluded from phase selection.
	MetaSection string `yaml:"meta_section"`
	// Site column holding the project label.
	ProjectLabelField string `yaml:"project_label_field"`
	CommentText       string `yaml:"comment_text"`
}

// DefaultRules mirrors the rules of the charging-point deployment audit.
func DefaultRules() AuditRules {
	return AuditRules{
		PhotoRules: map[string][]string{
			"Bornes DC": {"R [Plan de Déploiement]", "UR [Plan de Déploiement]"},
			"Bornes AC": {"L [Plan de Déploiement]"},
		},
		FieldLabels: map[string]string{
			"Intitulé":                       "Intitulé",
			"Fournisseur Bornes AC [Bornes]": "Fournisseur Bornes AC",
			"Fournisseur Bornes DC [Bornes]": "Fournisseur Bornes DC",
			"L [Plan de Déploiement]":        "PDC Lent",
			"R [Plan de Déploiement]":        "PDC Rapide",
			"UR [Plan de Déploiement]":       "PDC Ultra-rapide",
			"Pré L [Plan de Déploiement]":    "PDC L pré-équipés",
			"Pré R [Plan de Déploiement]":    "PDC R pré-équipés",
			"Pré UR [Plan de Déploiement]":   "PDC UR pré-équipés",
		},
		DisplayGroups: [][]string{
			{"Intitulé", "Fournisseur Bornes AC [Bornes]", "Fournisseur Bornes DC [Bornes]"},
			{"L [Plan de Déploiement]", "R [Plan de Déploiement]", "UR [Plan de Déploiement]"},
			{"Pré L [Plan de Déploiement]", "Pré R [Plan de Déploiement]", "Pré UR [Plan de Déploiement]"},
		},
		MetaSection:       "Meta",
		ProjectLabelField: survey.ProjectLabelField,
		CommentText:       survey.DefaultCommentText,
	}
}

// LoadRules reads a YAML rules file. Keys left out of the file keep their
// default value.
func LoadRules(path string) (AuditRules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return AuditRules{}, err
	}
	return ParseRules(data)
}

func ParseRules(data []byte) (AuditRules, error) {
	rules := DefaultRules()
	var file AuditRules
	if err := yaml.Unmarshal(data, &file); err != nil {
		return AuditRules{}, fmt.Errorf("parsing audit rules: %w", err)
	}
	if file.PhotoRules != nil {
		rules.PhotoRules = file.PhotoRules
	}
	if file.FieldLabels != nil {
		rules.FieldLabels = file.FieldLabels
	}
	if file.DisplayGroups != nil {
		rules.DisplayGroups = file.DisplayGroups
	}
	if file.MetaSection != "" {
		rules.MetaSection = file.MetaSection
	}
	if file.ProjectLabelField != "" {
		rules.ProjectLabelField = file.ProjectLabelField
	}
	if file.CommentText != "" {
		rules.CommentText = file.CommentText
	}
	return rules, nil
}

// Engine returns the rule table handed to the validator.
func (r AuditRules) Engine() survey.Rules {
	return survey.Rules{
		Photo:       r.PhotoRules,
		FieldLabels: r.FieldLabels,
		CommentText: r.CommentText,
	}
}

// Label returns the short label of a project field.
func (r AuditRules) Label(field string) string {
	if l, ok := r.FieldLabels[field]; ok && l != "" {
		return l
	}
	return field
}
