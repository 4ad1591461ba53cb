package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domain "github.com/vitalplate/v1/internal/domain/generation"
)

func TestBuildPromptIsDeterministic(t *testing.T) {
	req := domain.Request{
		MealName:            "quinoa power bowl",
		MealType:            "lunch",
		Systems:             []domain.DefenseSystem{domain.SystemImmunity, domain.SystemMicrobiome},
		DietaryRestrictions: []string{"vegetarian", "nut-free"},
		Servings:            4,
		CustomInstructions:  "keep it under 30 minutes",
	}

	assert.Equal(t, BuildPrompt(req), BuildPrompt(req))
}

func TestBuildPromptIncludesRequestContext(t *testing.T) {
	req := domain.Request{
		MealName:            "quinoa power bowl",
		MealType:            "lunch",
		Systems:             []domain.DefenseSystem{domain.SystemImmunity},
		DietaryRestrictions: []string{"vegetarian"},
		Servings:            4,
		CustomInstructions:  "keep it under 30 minutes",
	}

	prompt := BuildPrompt(req)

	assert.Contains(t, prompt, "Create a detailed recipe for: quinoa power bowl")
	assert.Contains(t, prompt, "- Meal Type: lunch")
	assert.Contains(t, prompt, "- Servings: 4")
	assert.Contains(t, prompt, "IMMUNITY")
	assert.Contains(t, prompt, "- Dietary restrictions: vegetarian")
	assert.Contains(t, prompt, "- Special instructions: keep it under 30 minutes")
	assert.Contains(t, prompt, "Immunity: Focus on Shiitake Mushrooms, Maitake Mushrooms, Reishi Mushrooms")
}

func TestBuildPromptEmitsAllMarkers(t *testing.T) {
	prompt := BuildPrompt(domain.Request{MealName: "soup"})

	for _, marker := range []string{
		markerTitle, markerDescription, markerPrepTime, markerCookTime,
		markerServings, markerIngredients, markerInstructions, markerNutrients,
	} {
		assert.Contains(t, prompt, marker)
	}
}

func TestBuildPromptDefaultsServings(t *testing.T) {
	prompt := BuildPrompt(domain.Request{MealName: "soup"})

	assert.Contains(t, prompt, "- Servings: 2")
}
