package report

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"site-audit-be/pkg/survey"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collected() []survey.PhaseRecord {
	return []survey.PhaseRecord{
		{PhaseName: "Identification", Answers: survey.Answers{
			2: survey.TextAnswer("Dupont, Jean"),
			1: survey.NumberAnswer(3),
		}},
		{PhaseName: "Bornes DC", Answers: survey.Answers{
			10: survey.FilesAnswer(survey.FileRef{Name: "a.PNG"}, survey.FileRef{Name: "b"}),
			11: survey.TextAnswer("RAS"),
		}},
		{PhaseName: "Bornes DC", Answers: survey.Answers{
			10: survey.FilesAnswer(survey.FileRef{Name: "c.jpg"}),
		}},
	}
}

func TestCSV(t *testing.T) {
	out, err := CSV("Parking Nord", collected())
	require.NoError(t, err)

	want := "Projet,Phase,Question_ID,Réponse\n" +
		"Parking Nord,Identification,1,3\n" +
		"Parking Nord,Identification,2,\"Dupont, Jean\"\n" +
		"Parking Nord,Bornes DC,11,RAS\n"
	assert.Equal(t, want, string(out))
}

func TestCSV_Empty(t *testing.T) {
	out, err := CSV("P", nil)
	require.NoError(t, err)
	assert.Equal(t, "Projet,Phase,Question_ID,Réponse\n", string(out))
}

func TestPhotoName(t *testing.T) {
	assert.Equal(t, "Bornes DC_Q10_0.png", PhotoName("Bornes DC", 10, 0, "a.PNG"))
	assert.Equal(t, "Bornes DC_Q10_1.jpg", PhotoName("Bornes DC", 10, 1, "b"))
}

func TestZip(t *testing.T) {
	open := func(ref survey.FileRef) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("data-" + ref.Name)), nil
	}

	out, n, err := Zip(collected(), open)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	zr, err := zip.NewReader(bytes.NewReader(out), int64(len(out)))
	require.NoError(t, err)

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"Bornes DC_Q10_0.png", "Bornes DC_Q10_1.jpg", "Bornes DC (2)_Q10_0.jpg"}, names)

	rc, err := zr.File[1].Open()
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "data-b", string(body))
}

func TestZip_OpenFailure(t *testing.T) {
	open := func(ref survey.FileRef) (io.ReadCloser, error) {
		return nil, errors.New("gone")
	}
	_, _, err := Zip(collected(), open)
	assert.ErrorContains(t, err, "opening a.PNG")
}
