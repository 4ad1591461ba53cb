package generation

import (
	"fmt"
	"strings"

	domain "github.com/vitalplate/v1/internal/domain/generation"
)

const (
	minIngredients     = 3
	minRealIngredients = 3
	minInstructionLen  = 100
)

// genericTitleTokens mark a title that restates the request instead of
// naming a dish.
var genericTitleTokens = []string{"recipe", "healthy", "boost", "support", "meal", "dish"}

// QualityGate is the sole authority for whether a generation attempt counts.
// Validation is pure: no I/O, no mutation of the candidate.
type QualityGate struct{}

// NewQualityGate creates a quality gate.
func NewQualityGate() *QualityGate {
	return &QualityGate{}
}

// Validate runs every rule and collects a human-readable reason per failing
// rule. A candidate is valid only when all rules pass.
func (g *QualityGate) Validate(candidate *domain.Candidate, req domain.Request) domain.ValidationOutcome {
	var reasons []string

	reasons = append(reasons, g.checkTitle(candidate.Title, req)...)
	reasons = append(reasons, g.checkIngredients(candidate.Ingredients)...)
	reasons = append(reasons, g.checkInstructions(candidate.Instructions)...)

	return domain.ValidationOutcome{
		Valid:   len(reasons) == 0,
		Reasons: reasons,
	}
}

func (g *QualityGate) checkTitle(title string, req domain.Request) []string {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return []string{"title is missing"}
	}

	words := strings.Fields(trimmed)
	if len(words) <= 3 && containsGenericToken(trimmed, req) {
		return []string{fmt.Sprintf("title %q is too generic, it must name an actual dish", trimmed)}
	}

	return nil
}

// containsGenericToken checks the fixed generic vocabulary plus the names of
// the requested defense systems, so "Immunity Recipe" fails for an immunity
// request.
func containsGenericToken(title string, req domain.Request) bool {
	lower := strings.ToLower(title)

	for _, token := range genericTitleTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}

	for _, system := range req.Systems {
		if strings.Contains(lower, strings.ToLower(system.DisplayName())) {
			return true
		}
	}

	return false
}

// checkIngredients requires at least three rows, at least three of which
// carry a real name: longer than two characters and not a placeholder row
// containing the literal word "ingredient".
func (g *QualityGate) checkIngredients(ingredients []domain.Ingredient) []string {
	if len(ingredients) < minIngredients {
		return []string{fmt.Sprintf("recipe needs at least %d ingredients, got %d", minIngredients, len(ingredients))}
	}

	real := 0
	for _, ing := range ingredients {
		name := strings.TrimSpace(ing.Name)
		if len(name) > 2 && !strings.Contains(strings.ToLower(name), "ingredient") {
			real++
		}
	}

	if real < minRealIngredients {
		return []string{fmt.Sprintf("recipe needs at least %d named ingredients, got %d", minRealIngredients, real)}
	}

	return nil
}

func (g *QualityGate) checkInstructions(instructions string) []string {
	var reasons []string

	trimmed := strings.TrimSpace(instructions)
	if len(trimmed) < minInstructionLen {
		reasons = append(reasons, fmt.Sprintf("instructions must be at least %d characters, got %d", minInstructionLen, len(trimmed)))
	}

	if strings.Contains(trimmed, instructionsPlaceholder) {
		reasons = append(reasons, "instructions are a placeholder, not real cooking steps")
	}

	return reasons
}
