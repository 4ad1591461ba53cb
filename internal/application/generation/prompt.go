package generation

import (
	"fmt"
	"strings"

	domain "github.com/vitalplate/v1/internal/domain/generation"
)

// Output section markers the parser keys on. The prompt asks for them
// verbatim so a well-behaved completion is mechanically splittable.
const (
	markerTitle        = "TITLE:"
	markerDescription  = "DESCRIPTION:"
	markerPrepTime     = "PREP_TIME:"
	markerCookTime     = "COOK_TIME:"
	markerServings     = "SERVINGS:"
	markerIngredients  = "INGREDIENTS:"
	markerInstructions = "INSTRUCTIONS:"
	markerNutrients    = "NUTRIENTS:"
)

const defaultServings = 2

// BuildPrompt renders the deterministic natural-language prompt for one
// generation. The same request always produces the same prompt.
func BuildPrompt(req domain.Request) string {
	servings := req.Servings
	if servings <= 0 {
		servings = defaultServings
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Create a detailed recipe for: %s\n\n", req.MealName)

	b.WriteString("Context:\n")
	if req.MealType != "" {
		fmt.Fprintf(&b, "- Meal Type: %s\n", req.MealType)
	}
	fmt.Fprintf(&b, "- Servings: %d\n", servings)
	if len(req.Systems) > 0 {
		fmt.Fprintf(&b, "- Defense Systems to support: %s\n", joinSystems(req.Systems))
	}
	if len(req.DietaryRestrictions) > 0 {
		fmt.Fprintf(&b, "- Dietary restrictions: %s\n", strings.Join(req.DietaryRestrictions, ", "))
	}
	if req.CustomInstructions != "" {
		fmt.Fprintf(&b, "- Special instructions: %s\n", req.CustomInstructions)
	}

	if context := systemsContext(req.Systems); context != "" {
		b.WriteString("\nDefense Systems Context:\n")
		b.WriteString(context)
		b.WriteString("\nCreate a recipe that incorporates foods known to support these defense systems.\n")
	}

	b.WriteString("\nMake the recipe practical, delicious, and nutritionally balanced.\n")
	b.WriteString("The title must name the actual dish, not restate the request.\n")
	b.WriteString("Use standard units (cups, tbsp, tsp, g, oz, or counts) for ingredient amounts.\n")

	b.WriteString("\nProvide the recipe in the following EXACT format:\n\n")
	fmt.Fprintf(&b, "%s [Creative recipe name]\n\n", markerTitle)
	fmt.Fprintf(&b, "%s [2-3 sentences about the recipe and its health benefits]\n\n", markerDescription)
	fmt.Fprintf(&b, "%s [e.g., \"15 min\"]\n\n", markerPrepTime)
	fmt.Fprintf(&b, "%s [e.g., \"30 min\"]\n\n", markerCookTime)
	fmt.Fprintf(&b, "%s %d\n\n", markerServings, servings)
	fmt.Fprintf(&b, "%s\n- [amount] [ingredient name]\n- [amount] [ingredient name]\n[continue for all ingredients]\n\n", markerIngredients)
	fmt.Fprintf(&b, "%s\n1. [First step]\n2. [Second step]\n[continue numbered steps]\n\n", markerInstructions)
	fmt.Fprintf(&b, "%s\n- [nutrient name]: [amount]\n- [nutrient name]: [amount]\n[key nutrients that support the defense systems]\n", markerNutrients)

	return b.String()
}

// systemsContext summarizes each requested defense system with its top key
// foods, one line per system.
func systemsContext(systems []domain.DefenseSystem) string {
	var lines []string
	for _, system := range systems {
		info, ok := domain.SystemInfoFor(system)
		if !ok {
			continue
		}
		foods := info.KeyFoods
		if len(foods) > 3 {
			foods = foods[:3]
		}
		lines = append(lines, fmt.Sprintf("%s: Focus on %s", info.DisplayName, strings.Join(foods, ", ")))
	}
	return strings.Join(lines, "\n")
}

func joinSystems(systems []domain.DefenseSystem) string {
	names := make([]string, len(systems))
	for i, system := range systems {
		names[i] = string(system)
	}
	return strings.Join(names, ", ")
}
