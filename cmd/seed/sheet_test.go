package main

import (
	"strings"
	"testing"

	"site-audit-be/pkg/survey"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadQuestions(t *testing.T) {
	sheet := "\ufeffid,section,question,type,obligatoire,options,Description,Condition on,Condition value\n" +
		"1,Identification,Nom de l'auditeur,text,oui,,,0,\n" +
		"2.0,Identification,Météo,select,non,\"Soleil,Pluie\",,0,\n" +
		",,ligne vide,,,,,,\n" +
		"10,Bornes DC,Photos des bornes,photo,oui,,Une photo par PDC,1,2 = Soleil\n"

	questions, skipped, err := ReadQuestions(strings.NewReader(sheet))
	require.NoError(t, err)
	require.Len(t, questions, 3)
	assert.Equal(t, []int{4}, skipped)

	assert.Equal(t, 1, questions[0].ID)
	assert.True(t, questions[0].Mandatory)
	assert.Equal(t, 2, questions[1].ID)
	assert.Equal(t, "2.0", questions[1].RawID)
	assert.Equal(t, []string{"Soleil", "Pluie"}, questions[1].Options)
	assert.Equal(t, survey.QuestionType("photo"), questions[2].Type)
	assert.True(t, questions[2].ConditionEnabled)
	assert.Equal(t, "2 = Soleil", questions[2].ConditionExpression)
	assert.Equal(t, 2, questions[2].Position)
}

func TestReadQuestions_MissingColumn(t *testing.T) {
	_, _, err := ReadQuestions(strings.NewReader("id,section,question\n1,S,Q\n"))
	assert.ErrorContains(t, err, `"type"`)
}

func TestReadSites(t *testing.T) {
	sheet := "Intitulé,R [Plan de Déploiement],UR [Plan de Déploiement]\n" +
		"Parking Nord,2,1\n" +
		",3,3\n" +
		"Gare Sud,0,\n"

	sites, err := ReadSites(strings.NewReader(sheet), "Intitulé")
	require.NoError(t, err)
	require.Len(t, sites, 2)
	assert.Equal(t, "Parking Nord", sites[0].Label)
	assert.Equal(t, "2", sites[0].Fields["R [Plan de Déploiement]"])
	assert.Equal(t, "Gare Sud", sites[1].Label)
	assert.Equal(t, 1, sites[1].Position)

	_, err = ReadSites(strings.NewReader("Nom\nA\n"), "Intitulé")
	assert.Error(t, err)
}
