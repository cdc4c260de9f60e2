package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the content catalog from a YAML file.
func Load(filename string) (*Catalog, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}

	var catalog Catalog
	err = yaml.Unmarshal(data, &catalog)
	if err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	err = validateCatalog(&catalog)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	return &catalog, nil
}

func validateCatalog(catalog *Catalog) error {
	if len(catalog.Questions) == 0 {
		return fmt.Errorf("question bank is empty")
	}

	if len(catalog.Exam) == 0 {
		return fmt.Errorf("exam has no questions")
	}

	seen := make(map[int]bool)
	for _, q := range catalog.Questions {
		if seen[q.ID] {
			return fmt.Errorf("duplicate question id %d", q.ID)
		}
		seen[q.ID] = true

		if q.Question == "" {
			return fmt.Errorf("question %d has no text", q.ID)
		}
	}

	seen = make(map[int]bool)
	for _, q := range catalog.Exam {
		if seen[q.ID] {
			return fmt.Errorf("duplicate exam question id %d", q.ID)
		}
		seen[q.ID] = true

		if len(q.Options) < 2 {
			return fmt.Errorf("exam question %d needs at least two options", q.ID)
		}

		if q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex >= len(q.Options) {
			return fmt.Errorf("exam question %d: correct_answer_index %d out of range",
				q.ID, q.CorrectAnswerIndex)
		}
	}

	for _, tip := range catalog.Tips {
		if tip.Title == "" || tip.Content == "" {
			return fmt.Errorf("tip %d must have title and content", tip.ID)
		}
	}

	return nil
}
