package profile

import (
	"testing"

	"github.com/stretchr/testify/require"

	"interview-coach/internal/language"
)

func TestDefaultIsValid(t *testing.T) {
	p := Default(language.French)
	require.NoError(t, p.Validate())
	require.Equal(t, language.French, p.Language)

	require.Equal(t, language.English, Default("xx").Language)
}

func TestValidateRejectsUnknownValues(t *testing.T) {
	p := Default(language.English)
	p.JobCategory = "Astronaut"
	require.Error(t, p.Validate())

	p = Default(language.English)
	p.Name = ""
	require.Error(t, p.Validate())

	p = Default(language.English)
	p.Language = "de"
	require.Error(t, p.Validate())
}

func TestParseCategoryAndLevel(t *testing.T) {
	c, err := ParseCategory(" health ")
	require.NoError(t, err)
	require.Equal(t, CategoryHealth, c)

	l, err := ParseLevel("professional")
	require.NoError(t, err)
	require.Equal(t, LevelProfessional, l)

	_, err = ParseLevel("guru")
	require.Error(t, err)
}
