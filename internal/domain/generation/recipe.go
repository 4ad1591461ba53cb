package generation

import (
	"time"

	"github.com/google/uuid"
)

// Recipe is a candidate that passed the quality gate and was persisted. It is
// keyed by the meal target it was generated for, so a repeat request can
// return the stored recipe instead of spending another generation.
type Recipe struct {
	ID           uuid.UUID         `json:"id"`
	TargetID     uuid.UUID         `json:"target_id"`
	OwnerID      uuid.UUID         `json:"owner_id"`
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
	CreatedAt    time.Time         `json:"created_at"`
}

// FromCandidate builds a persistable recipe from a validated candidate.
func FromCandidate(c *Candidate, targetID, ownerID uuid.UUID) *Recipe {
	return &Recipe{
		ID:           uuid.New(),
		TargetID:     targetID,
		OwnerID:      ownerID,
		Title:        c.Title,
		Description:  c.Description,
		Servings:     c.Servings,
		PrepTime:     c.PrepTime,
		CookTime:     c.CookTime,
		Ingredients:  c.Ingredients,
		Instructions: c.Instructions,
		Nutrients:    c.Nutrients,
		Systems:      c.Systems,
		Model:        c.Model,
		CreatedAt:    time.Now().UTC(),
	}
}

// AsCandidate renders the stored recipe back in candidate form, used when a
// repeat request is served from storage.
func (r *Recipe) AsCandidate() *Candidate {
	return &Candidate{
		Title:        r.Title,
		Description:  r.Description,
		Servings:     r.Servings,
		PrepTime:     r.PrepTime,
		CookTime:     r.CookTime,
		Ingredients:  r.Ingredients,
		Instructions: r.Instructions,
		Nutrients:    r.Nutrients,
		Systems:      r.Systems,
		Model:        r.Model,
	}
}
