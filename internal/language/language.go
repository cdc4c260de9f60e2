// Package language holds the fixed table of supported interview languages.
package language

import (
	"fmt"
	"strings"
)

// Code is a short language identifier as typed by the user.
type Code string

const (
	English     Code = "en"
	French      Code = "fr"
	Kinyarwanda Code = "rw"
)

// Default is used when a profile has no language yet.
const Default = English

var names = map[Code]string{
	English:     "English",
	French:      "French",
	Kinyarwanda: "Kinyarwanda",
}

var greetings = map[Code]string{
	English:     "Hello! I'm your interview coach. Let's practice some questions. I'll start. Here is your first question:",
	French:      "Bonjour ! Je suis votre coach d'entretien. Pratiquons quelques questions. Je vais commencer. Voici votre première question :",
	Kinyarwanda: "Muraho! Ndi umutoza wawe mu kizamini cy'akazi. Reka twitoze ibibazo bimwe na bimwe. Ndabanza. Iki nicyo kibazo cyawe cya mbere:",
}

// All returns the supported codes in display order.
func All() []Code {
	return []Code{English, French, Kinyarwanda}
}

// Parse accepts a code or a language name, case-insensitively.
func Parse(s string) (Code, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for code, name := range names {
		if s == string(code) || s == strings.ToLower(name) {
			return code, nil
		}
	}
	return "", fmt.Errorf("unsupported language %q", s)
}

// Valid reports whether c is in the table.
func (c Code) Valid() bool {
	_, ok := names[c]
	return ok
}

// Name returns the English name used inside prompts. Unknown codes fall back to English.
func (c Code) Name() string {
	if name, ok := names[c]; ok {
		return name
	}
	return names[Default]
}

// Greeting returns the opening line of a new interview session.
func (c Code) Greeting() string {
	if g, ok := greetings[c]; ok {
		return g
	}
	return greetings[Default]
}
