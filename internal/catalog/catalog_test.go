package catalog

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-selfcheck/internal/assessment"
)

func TestBuiltin_AllDefinitionsValid(t *testing.T) {
	c, err := Builtin()
	require.NoError(t, err)

	ids := []string{}
	for _, d := range c.List() {
		ids = append(ids, d.ID)
		require.NoError(t, d.Validate(), d.ID)
		for _, q := range d.Questions {
			assert.Equal(t, assessment.Scale(), q.Options, q.ID)
		}
	}
	assert.Equal(t, []string{"adhd", "burnout", "childhood-trauma"}, ids)
}

func TestBuiltin_ScoresEndToEnd(t *testing.T) {
	c, err := Builtin()
	require.NoError(t, err)
	d, err := c.Get("burnout")
	require.NoError(t, err)

	resp := assessment.Responses{}
	for _, q := range d.Questions {
		resp[q.ID] = assessment.VeryOften
	}
	res, err := assessment.Compute(d, resp)
	require.NoError(t, err)
	assert.Equal(t, "High burnout risk", res.Title)
	assert.Equal(t, "burnout/high.png", res.Image)
	assert.Equal(t, []assessment.CategoryScore{
		{Label: "Exhaustion", Score: 33},
		{Label: "Cynicism", Score: 33},
		{Label: "Inefficacy", Score: 33},
	}, res.Results)
}

func TestGet_Unknown(t *testing.T) {
	c, err := Builtin()
	require.NoError(t, err)
	_, err = c.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoad_RejectsInvalidDefinition(t *testing.T) {
	fsys := fstest.MapFS{
		"gap.yaml": {Data: []byte(`
id: gap
questions:
  - {id: q1, category: mood}
bands:
  - {id: low, min: 0, max: 1, title: Low}
  - {id: high, min: 3, max: 4, title: High}
`)},
	}
	_, err := Load(fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gap.yaml")
	assert.Contains(t, err.Error(), "no band covers totals 2..2")
}

func TestLoad_RejectsUnknownOptionLabel(t *testing.T) {
	fsys := fstest.MapFS{
		"typo.yaml": {Data: []byte(`
id: typo
questions:
  - {id: q1, category: mood, options: [Never, Oftn]}
bands:
  - {id: all, min: 0, max: 4, title: All}
`)},
	}
	_, err := Load(fsys)
	assert.ErrorIs(t, err, assessment.ErrUnknownOption)
}

func TestLoad_DuplicateIDs(t *testing.T) {
	def := []byte("id: same\nquestions: [{id: q1, category: c}]\nbands: [{id: b, min: 0, max: 4}]\n")
	_, err := Load(fstest.MapFS{"a.yaml": {Data: def}, "b.yaml": {Data: def}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate assessment id")
}

func TestSummarize(t *testing.T) {
	c, err := Builtin()
	require.NoError(t, err)
	d, err := c.Get("adhd")
	require.NoError(t, err)
	s := Summarize(d)
	assert.Equal(t, 8, s.QuestionCount)
	assert.Equal(t, []string{"inattention", "hyperactivity", "impulsivity"}, s.Categories)
}
