package language

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := map[string]Code{
		"en":          English,
		"FR":          French,
		" french ":    French,
		"Kinyarwanda": Kinyarwanda,
	}
	for input, want := range cases {
		got, err := Parse(input)
		require.NoError(t, err, input)
		require.Equal(t, want, got, input)
	}

	_, err := Parse("de")
	require.Error(t, err)
}

func TestNameUsesFixedTable(t *testing.T) {
	require.Equal(t, "French", French.Name())
	require.Equal(t, "Kinyarwanda", Kinyarwanda.Name())
	require.Equal(t, "English", Code("xx").Name())
	require.False(t, Code("xx").Valid())
}

func TestGreetingPerLanguage(t *testing.T) {
	for _, c := range All() {
		require.NotEmpty(t, c.Greeting())
	}
	require.Contains(t, French.Greeting(), "Bonjour")
}
