// Package generation contains the value types of the recipe generation
// pipeline: the request that shapes a prompt, the parsed-but-unvalidated
// candidate, validation outcomes, and per-task batch results.
package generation

import (
	"github.com/google/uuid"
)

// Request carries the domain inputs a single generation needs to build its
// prompt: the target meal, the defense systems to support, dietary
// restrictions, serving count and optional free-text customization.
type Request struct {
	TargetID            uuid.UUID       `json:"target_id"`
	MealName            string          `json:"meal_name"`
	MealType            string          `json:"meal_type,omitempty"`
	Systems             []DefenseSystem `json:"systems,omitempty"`
	DietaryRestrictions []string        `json:"dietary_restrictions,omitempty"`
	Servings            int             `json:"servings,omitempty"`
	CustomInstructions  string          `json:"custom_instructions,omitempty"`
}

// Ingredient is one parsed ingredient row. Amount and unit stay strings:
// provider output mixes "2", "1/2" and "pinch" style quantities.
type Ingredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Unit   string `json:"unit,omitempty"`
}

// Candidate is a parsed generation that has not yet passed the quality gate.
// Optional sections are backfilled with explicit fallbacks before validation;
// the title is never backfilled so an empty title fails validation instead of
// being silently renamed.
type Candidate struct {
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Servings     int               `json:"servings"`
	PrepTime     string            `json:"prep_time,omitempty"`
	CookTime     string            `json:"cook_time,omitempty"`
	Ingredients  []Ingredient      `json:"ingredients"`
	Instructions string            `json:"instructions"`
	Nutrients    map[string]string `json:"nutrients,omitempty"`
	Systems      []DefenseSystem   `json:"systems,omitempty"`
	Model        string            `json:"model,omitempty"`
}

// ValidationOutcome is the quality gate's pure judgment over a candidate
type ValidationOutcome struct {
	Valid   bool     `json:"valid"`
	Reasons []string `json:"reasons,omitempty"`
}

// Result captures one batch task's outcome. Exactly one of Recipe/Error is
// meaningful depending on Success; a quality-rejected candidate additionally
// keeps Recipe populated for caller visibility.
type Result struct {
	ID         string     `json:"id"`
	Success    bool       `json:"success"`
	Recipe     *Candidate `json:"recipe,omitempty"`
	Error      string     `json:"error,omitempty"`
	DurationMS int64      `json:"duration_ms"`
}

// Task is an independent unit of batch work: an identifier plus the operation
// producing a candidate. Tasks never observe each other's state.
type Task struct {
	ID  string
	Run func() (*Candidate, error)
}
