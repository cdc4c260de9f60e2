package config

import (
	"interview-coach/internal/language"
	"interview-coach/internal/profile"
)

// Catalog is the static content shown by the coach.
type Catalog struct {
	Questions []Question                          `yaml:"questions"`
	Exam      []ExamQuestion                      `yaml:"exam"`
	Tips      []Tip                               `yaml:"tips"`
	Progress  []ProgressPoint                     `yaml:"progress"`
	Labels    map[language.Code]map[string]string `yaml:"labels"`
}

// Question is a bank entry with a model answer.
type Question struct {
	ID       int                 `yaml:"id"`
	Category profile.JobCategory `yaml:"category"`
	Question string              `yaml:"question"`
	Answer   string              `yaml:"answer"`
}

type ExamQuestion struct {
	ID                 int                 `yaml:"id"`
	Category           profile.JobCategory `yaml:"category"`
	Question           string              `yaml:"question"`
	Options            []string            `yaml:"options"`
	CorrectAnswerIndex int                 `yaml:"correct_answer_index"`
}

type Tip struct {
	ID      int    `yaml:"id"`
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
}

// ProgressPoint is one bar of the progress chart.
type ProgressPoint struct {
	Name      string  `yaml:"name"`
	Practiced int     `yaml:"practiced"`
	Score     float64 `yaml:"score"`
}

// QuestionsFor returns the bank entries for a category, or the whole bank
// when the category has none.
func (c *Catalog) QuestionsFor(category profile.JobCategory) []Question {
	var out []Question
	for _, q := range c.Questions {
		if q.Category == category {
			out = append(out, q)
		}
	}
	if len(out) == 0 {
		return append([]Question(nil), c.Questions...)
	}
	return out
}

// Label returns a UI string in the given language, falling back to English
// and then to the key itself.
func (c *Catalog) Label(lang language.Code, key string) string {
	if v, ok := c.Labels[lang][key]; ok && v != "" {
		return v
	}
	if v, ok := c.Labels[language.English][key]; ok && v != "" {
		return v
	}
	return key
}
