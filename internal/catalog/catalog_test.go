package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedData(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	templates := c.Templates()
	require.Len(t, templates, 7)
	assert.Equal(t, "clean_slate", templates[0].ID)
	assert.Equal(t, "polyglot", templates[len(templates)-1].ID)

	poly, ok := c.Template("polyglot")
	require.True(t, ok)
	require.Len(t, poly.Skills, 3)
	assert.Equal(t, []string{"French", "Spanish", "Japanese"},
		[]string{poly.Skills[0].Name, poly.Skills[1].Name, poly.Skills[2].Name})
	assert.Empty(t, poly.Financial)
	assert.NotNil(t, poly.Financial)

	fin, ok := c.Template("financial_assassin")
	require.True(t, ok)
	assert.Empty(t, fin.Skills)
	require.Len(t, fin.Financial, 3)
	assert.Equal(t, 10000.0, fin.Financial[0].Target)

	_, ok = c.Template("unknown")
	assert.False(t, ok)
}

func TestTemplatesReturnsCopy(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	first := c.Templates()
	first[0].Name = "mutated"
	assert.Equal(t, "The Clean Slate", c.Templates()[0].Name)
}

func TestActivityMatching(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Tennis", c.Activity("Table TENNIS practice"))
	assert.Equal(t, "Debt Repayment", c.Activity("credit card debt repayment plan"))
	assert.Equal(t, "Padel", c.Activity("padel"))
	assert.Equal(t, DefaultActivity, c.Activity("Knitting"))
	assert.Equal(t, DefaultActivity, c.Activity(""))
}

func TestRandomFactBelongsToActivity(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		activity, fact := c.RandomFact("Cycling to work")
		assert.Equal(t, "Cycling", activity)
		assert.Contains(t, c.Facts("Cycling"), fact)
	}
}

func TestNewRejectsBadData(t *testing.T) {
	facts := []ActivityFacts{{Activity: DefaultActivity, Facts: []string{"x"}}}

	_, err := New([]Template{{ID: "a"}, {ID: "a"}}, facts)
	assert.ErrorContains(t, err, "duplicate template")

	_, err = New([]Template{{Name: "no id"}}, facts)
	assert.Error(t, err)

	_, err = New(nil, []ActivityFacts{{Activity: "Tennis", Facts: []string{"x"}}})
	assert.ErrorContains(t, err, "Default")

	_, err = New(nil, []ActivityFacts{{Activity: "Tennis"}, {Activity: DefaultActivity, Facts: []string{"x"}}})
	assert.ErrorContains(t, err, "no facts")
}
