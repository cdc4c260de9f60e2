// Package profile describes the user's interview preferences.
package profile

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"interview-coach/internal/language"
)

// JobCategory groups questions and tailors prompts.
type JobCategory string

const (
	CategoryIT       JobCategory = "IT"
	CategoryBusiness JobCategory = "Business"
	CategoryTeaching JobCategory = "Teaching"
	CategoryHealth   JobCategory = "Health"
	CategoryOther    JobCategory = "Other"
)

// ExperienceLevel tailors the difficulty of generated questions.
type ExperienceLevel string

const (
	LevelBeginner     ExperienceLevel = "Beginner"
	LevelIntermediate ExperienceLevel = "Intermediate"
	LevelProfessional ExperienceLevel = "Professional"
)

// Categories lists every job category in display order.
func Categories() []JobCategory {
	return []JobCategory{CategoryIT, CategoryBusiness, CategoryTeaching, CategoryHealth, CategoryOther}
}

// Levels lists every experience level in display order.
func Levels() []ExperienceLevel {
	return []ExperienceLevel{LevelBeginner, LevelIntermediate, LevelProfessional}
}

// UserProfile is configuration consumed when building prompts.
type UserProfile struct {
	Name            string          `json:"name" validate:"required,max=64"`
	JobCategory     JobCategory     `json:"job_category" validate:"required,oneof=IT Business Teaching Health Other"`
	ExperienceLevel ExperienceLevel `json:"experience_level" validate:"required,oneof=Beginner Intermediate Professional"`
	Language        language.Code   `json:"language" validate:"required,oneof=en fr rw"`
}

// Default is the profile assigned by the login stub.
func Default(lang language.Code) UserProfile {
	if !lang.Valid() {
		lang = language.Default
	}
	return UserProfile{
		Name:            "User",
		JobCategory:     CategoryIT,
		ExperienceLevel: LevelBeginner,
		Language:        lang,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field against the allowed values.
func (p UserProfile) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	return nil
}

// ParseCategory matches a category case-insensitively.
func ParseCategory(s string) (JobCategory, error) {
	for _, c := range Categories() {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown job category %q", s)
}

// ParseLevel matches an experience level case-insensitively.
func ParseLevel(s string) (ExperienceLevel, error) {
	for _, l := range Levels() {
		if strings.EqualFold(strings.TrimSpace(s), string(l)) {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown experience level %q", s)
}
