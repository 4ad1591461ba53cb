package generation

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	domain "github.com/vitalplate/v1/internal/domain/generation"
	"github.com/vitalplate/v1/pkg/errors"
)

// instructionsPlaceholder is the reserved fallback the parser emits when a
// completion carried no usable instructions. The quality gate recognizes it
// and rejects the candidate.
const instructionsPlaceholder = "Detailed cooking instructions were not provided for this recipe. Please regenerate to get complete step-by-step directions."

// descriptionFallback backfills a missing description. Unlike the title, a
// missing description is not a validity problem.
const descriptionFallback = "A nourishing recipe designed to support your body's natural defense systems."

const maxTitleLength = 100

// knownUnits are the amount units the ingredient-line parser recognizes.
var knownUnits = map[string]bool{
	"cup": true, "cups": true, "tbsp": true, "tsp": true, "tablespoon": true,
	"tablespoons": true, "teaspoon": true, "teaspoons": true, "oz": true,
	"ounce": true, "ounces": true, "lb": true, "lbs": true, "g": true,
	"kg": true, "ml": true, "l": true, "clove": true, "cloves": true,
	"slice": true, "slices": true, "piece": true, "pieces": true,
	"can": true, "cans": true, "bunch": true, "inch": true, "inches": true,
	"large": true, "medium": true, "small": true,
}

// irregularAmounts cover phrasings like "pinch of salt" or "dash of nutmeg"
// that carry no numeric quantity.
var irregularAmounts = map[string]bool{
	"pinch": true, "dash": true, "handful": true, "splash": true, "drizzle": true,
}

// ParseCandidate decodes a raw completion into a structured candidate.
// JSON-shaped payloads (optionally wrapped in markdown code fences) are
// decoded directly; anything else goes through the marker-based line scan.
// Missing optional fields are backfilled; the title is never backfilled.
func ParseCandidate(raw string, req domain.Request) (*domain.Candidate, error) {
	text := stripCodeFences(raw)

	var candidate *domain.Candidate
	if strings.HasPrefix(strings.TrimSpace(text), "{") {
		parsed, err := parseJSONCandidate(text)
		if err != nil {
			return nil, err
		}
		candidate = parsed
	} else {
		candidate = parseMarkedCandidate(text)
	}

	backfill(candidate, req)
	return candidate, nil
}

// stripCodeFences removes surrounding markdown code-fence markup a provider
// sometimes wraps its payload in.
func stripCodeFences(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// jsonCandidate tolerates the shape variations seen in JSON completions:
// instructions as a plain string or as an array of step objects, and
// nutrition values as numbers or strings.
type jsonCandidate struct {
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Servings     int               `json:"servings"`
	PrepTime     string            `json:"prepTime"`
	CookTime     string            `json:"cookTime"`
	Ingredients  []jsonIngredient  `json:"ingredients"`
	Instructions json.RawMessage   `json:"instructions"`
	Nutrition    map[string]any    `json:"nutrition"`
	Nutrients    map[string]string `json:"nutrients"`
}

type jsonIngredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Unit   string `json:"unit"`
}

type jsonStep struct {
	Step        int    `json:"step"`
	Instruction string `json:"instruction"`
}

func parseJSONCandidate(text string) (*domain.Candidate, error) {
	var decoded jsonCandidate
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return nil, errors.NewParseFailureError(err)
	}

	candidate := &domain.Candidate{
		Title:       strings.TrimSpace(decoded.Title),
		Description: strings.TrimSpace(decoded.Description),
		Servings:    decoded.Servings,
		PrepTime:    decoded.PrepTime,
		CookTime:    decoded.CookTime,
		Nutrients:   decoded.Nutrients,
	}

	for _, ing := range decoded.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			continue
		}
		candidate.Ingredients = append(candidate.Ingredients, domain.Ingredient{
			Name:   strings.TrimSpace(ing.Name),
			Amount: strings.TrimSpace(ing.Amount),
			Unit:   strings.TrimSpace(ing.Unit),
		})
	}

	candidate.Instructions = decodeInstructions(decoded.Instructions)

	if candidate.Nutrients == nil && len(decoded.Nutrition) > 0 {
		candidate.Nutrients = make(map[string]string, len(decoded.Nutrition))
		keys := make([]string, 0, len(decoded.Nutrition))
		for k := range decoded.Nutrition {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			candidate.Nutrients[k] = fmt.Sprintf("%v", decoded.Nutrition[k])
		}
	}

	return candidate, nil
}

// decodeInstructions accepts either a single string or an ordered array of
// step objects and flattens both to one multi-line block.
func decodeInstructions(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return strings.TrimSpace(asString)
	}

	var steps []jsonStep
	if err := json.Unmarshal(raw, &steps); err == nil {
		var lines []string
		for i, step := range steps {
			n := step.Step
			if n == 0 {
				n = i + 1
			}
			if strings.TrimSpace(step.Instruction) == "" {
				continue
			}
			lines = append(lines, fmt.Sprintf("%d. %s", n, strings.TrimSpace(step.Instruction)))
		}
		return strings.Join(lines, "\n")
	}

	var plain []string
	if err := json.Unmarshal(raw, &plain); err == nil {
		var lines []string
		for i, step := range plain {
			if strings.TrimSpace(step) == "" {
				continue
			}
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, strings.TrimSpace(step)))
		}
		return strings.Join(lines, "\n")
	}

	return ""
}

// parseMarkedCandidate scans a marker-formatted completion line by line,
// accumulating the ingredients, nutrients and the multi-line instructions
// block between markers.
func parseMarkedCandidate(text string) *domain.Candidate {
	candidate := &domain.Candidate{
		Nutrients: make(map[string]string),
	}

	section := ""
	var instructions []string

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, markerTitle):
			title := strings.TrimSpace(strings.TrimPrefix(trimmed, markerTitle))
			if title != "" && title != "[Creative recipe name]" && len(title) >= 3 {
				candidate.Title = truncateTitle(title)
			}
			section = ""
		case strings.HasPrefix(trimmed, markerDescription):
			candidate.Description = strings.TrimSpace(strings.TrimPrefix(trimmed, markerDescription))
			section = ""
		case strings.HasPrefix(trimmed, markerPrepTime):
			candidate.PrepTime = strings.TrimSpace(strings.TrimPrefix(trimmed, markerPrepTime))
			section = ""
		case strings.HasPrefix(trimmed, markerCookTime):
			candidate.CookTime = strings.TrimSpace(strings.TrimPrefix(trimmed, markerCookTime))
			section = ""
		case strings.HasPrefix(trimmed, markerServings):
			if n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(trimmed, markerServings))); err == nil {
				candidate.Servings = n
			}
			section = ""
		case trimmed == markerIngredients:
			section = "ingredients"
		case trimmed == markerInstructions:
			section = "instructions"
		case trimmed == markerNutrients:
			section = "nutrients"
		case section == "ingredients" && strings.HasPrefix(trimmed, "-"):
			candidate.Ingredients = append(candidate.Ingredients, parseIngredientLine(trimmed))
		case section == "instructions":
			instructions = append(instructions, trimmed)
		case section == "nutrients" && strings.HasPrefix(trimmed, "-"):
			name, value, ok := strings.Cut(strings.TrimSpace(strings.TrimPrefix(trimmed, "-")), ":")
			if ok && strings.TrimSpace(name) != "" && strings.TrimSpace(value) != "" {
				candidate.Nutrients[strings.TrimSpace(name)] = strings.TrimSpace(value)
			}
		}
	}

	candidate.Instructions = strings.Join(instructions, "\n")
	return candidate
}

// parseIngredientLine splits a "- <quantity> <unit> <name>" bullet into its
// parts, tolerating irregular phrasings like "pinch of salt" and lines that
// carry no quantity at all.
func parseIngredientLine(line string) domain.Ingredient {
	text := strings.TrimSpace(strings.TrimPrefix(line, "-"))
	parts := strings.Fields(text)

	if len(parts) == 0 {
		return domain.Ingredient{Name: text, Amount: "1"}
	}

	first := strings.ToLower(parts[0])

	// "pinch of salt", "dash of nutmeg"
	if irregularAmounts[first] {
		name := strings.Join(parts[1:], " ")
		if len(parts) > 2 && strings.EqualFold(parts[1], "of") {
			name = strings.Join(parts[2:], " ")
		}
		if name == "" {
			name = text
		}
		return domain.Ingredient{Name: name, Amount: parts[0]}
	}

	if !startsNumeric(parts[0]) {
		return domain.Ingredient{Name: text, Amount: "1"}
	}

	if len(parts) >= 3 && knownUnits[strings.ToLower(parts[1])] {
		return domain.Ingredient{
			Name:   strings.Join(parts[2:], " "),
			Amount: parts[0],
			Unit:   parts[1],
		}
	}

	if len(parts) >= 2 {
		return domain.Ingredient{
			Name:   strings.Join(parts[1:], " "),
			Amount: parts[0],
		}
	}

	return domain.Ingredient{Name: text, Amount: "1"}
}

// startsNumeric reports whether a token looks like a quantity: "2", "1/2",
// "1.5", "2-3".
func startsNumeric(token string) bool {
	if token == "" {
		return false
	}
	return token[0] >= '0' && token[0] <= '9'
}

func truncateTitle(title string) string {
	if len(title) <= maxTitleLength {
		return title
	}
	return title[:maxTitleLength-3] + "..."
}

// backfill fills the optional fields a completion may omit. The title is
// deliberately left alone so an empty title fails validation instead of
// being silently renamed.
func backfill(candidate *domain.Candidate, req domain.Request) {
	if strings.TrimSpace(candidate.Description) == "" {
		candidate.Description = descriptionFallback
	}
	if strings.TrimSpace(candidate.Instructions) == "" {
		candidate.Instructions = instructionsPlaceholder
	}
	if candidate.Servings <= 0 {
		if req.Servings > 0 {
			candidate.Servings = req.Servings
		} else {
			candidate.Servings = defaultServings
		}
	}
	if len(candidate.Systems) == 0 {
		candidate.Systems = req.Systems
	}
}
