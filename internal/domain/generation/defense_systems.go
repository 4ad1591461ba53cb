package generation

import "strings"

// DefenseSystem identifies one of the five health defense systems a recipe
// can be designed to support.
type DefenseSystem string

const (
	SystemAngiogenesis  DefenseSystem = "ANGIOGENESIS"
	SystemRegeneration  DefenseSystem = "REGENERATION"
	SystemMicrobiome    DefenseSystem = "MICROBIOME"
	SystemDNAProtection DefenseSystem = "DNA_PROTECTION"
	SystemImmunity      DefenseSystem = "IMMUNITY"
)

// SystemInfo describes a defense system for prompt construction: a display
// name, a short description, and the foods and nutrients known to support it.
type SystemInfo struct {
	Name        DefenseSystem
	DisplayName string
	Description string
	KeyFoods    []string
	Nutrients   []string
}

var systemCatalog = map[DefenseSystem]SystemInfo{
	SystemAngiogenesis: {
		Name:        SystemAngiogenesis,
		DisplayName: "Angiogenesis",
		Description: "Blood vessel formation and healthy circulation. Supports starving harmful cells while feeding healthy ones.",
		KeyFoods: []string{
			"Tomatoes", "Blueberries", "Strawberries", "Cherries", "Pomegranate",
			"Red Grapes", "Kale", "Spinach", "Carrots", "Soybeans", "Tofu",
			"Black Beans", "Walnuts", "Almonds", "Salmon", "Sardines",
			"Green Tea", "Extra Virgin Olive Oil", "Dark Chocolate (>70% cacao)",
		},
		Nutrients: []string{
			"Lycopene", "Resveratrol", "Genistein", "Ellagic Acid",
			"EGCG (Epigallocatechin gallate)", "Anthocyanins", "Beta-Carotene",
			"Omega-3 Fatty Acids", "Hydroxytyrosol", "Quercetin",
		},
	},
	SystemRegeneration: {
		Name:        SystemRegeneration,
		DisplayName: "Regeneration",
		Description: "Tissue and organ regeneration through stem cell activation. Helps your body heal and rebuild itself.",
		KeyFoods: []string{
			"Wild Salmon", "Mackerel", "Sardines", "Oysters", "Mangoes",
			"Blueberries", "Blackberries", "Goji Berries", "Dark Grapes",
			"Walnuts", "Chia Seeds", "Flaxseeds", "Seaweed", "Kale",
			"Black Tea", "Green Tea", "Extra Virgin Olive Oil",
			"Dark Chocolate (>70% cacao)", "Free-Range Eggs",
		},
		Nutrients: []string{
			"Omega-3 Fatty Acids (EPA, DHA)", "Vitamin D", "Polyphenols",
			"Curcumin", "Resveratrol", "Pterostilbene", "Anthocyanins",
			"Fucoxanthin", "Astaxanthin",
		},
	},
	SystemMicrobiome: {
		Name:        SystemMicrobiome,
		DisplayName: "Microbiome",
		Description: "Gut bacteria health and digestive wellness. Supports beneficial bacteria that protect your health.",
		KeyFoods: []string{
			"Kimchi", "Sauerkraut", "Kefir", "Greek Yogurt", "Kombucha",
			"Miso", "Tempeh", "Sourdough Bread", "Garlic", "Onions",
			"Leeks", "Asparagus", "Bananas", "Oats", "Lentils", "Chickpeas",
			"Broccoli", "Blueberries", "Pomegranate", "Green Tea",
		},
		Nutrients: []string{
			"Probiotics (Lactobacillus, Bifidobacterium)",
			"Prebiotics (Inulin, FOS, GOS)",
			"Dietary Fiber (Soluble & Insoluble)", "Polyphenols",
			"Omega-3 Fatty Acids", "Vitamins (B12, K2)",
			"Short-Chain Fatty Acids (Butyrate)",
		},
	},
	SystemDNAProtection: {
		Name:        SystemDNAProtection,
		DisplayName: "DNA Protection",
		Description: "Repairing DNA damage and slowing aging. Protects genetic material from harmful mutations.",
		KeyFoods: []string{
			"Broccoli", "Broccoli Sprouts", "Brussels Sprouts", "Kale",
			"Watercress", "Spinach", "Carrots", "Sweet Potatoes", "Tomatoes",
			"Blueberries", "Blackberries", "Oranges", "Lemons", "Kiwi",
			"Turmeric", "Ginger", "Garlic", "Green Tea", "Walnuts",
			"Brazil Nuts", "Lentils",
		},
		Nutrients: []string{
			"Sulforaphane", "EGCG (Epigallocatechin gallate)", "Curcumin",
			"Anthocyanins", "Beta-Carotene", "Lycopene", "Vitamin C",
			"Vitamin E", "Folate", "Selenium", "Zinc", "Quercetin",
			"Resveratrol",
		},
	},
	SystemImmunity: {
		Name:        SystemImmunity,
		DisplayName: "Immunity",
		Description: "Fighting infection and cancer. Strengthens immune response against harmful invaders.",
		KeyFoods: []string{
			"Shiitake Mushrooms", "Maitake Mushrooms", "Reishi Mushrooms",
			"Garlic", "Onions", "Oranges", "Lemons", "Elderberries",
			"Blueberries", "Broccoli", "Kale", "Red Bell Peppers",
			"Sweet Potatoes", "Ginger", "Turmeric", "Almonds",
			"Pumpkin Seeds", "Oysters", "Salmon", "Yogurt", "Green Tea",
		},
		Nutrients: []string{
			"Beta-Glucans", "Allicin", "Vitamin C", "Vitamin D", "Vitamin E",
			"Vitamin A", "Zinc", "Selenium", "Polyphenols", "Anthocyanins",
			"Quercetin", "Curcumin", "Gingerol", "Probiotics",
		},
	},
}

// AllSystems returns the catalog's systems in a stable order.
func AllSystems() []DefenseSystem {
	return []DefenseSystem{
		SystemAngiogenesis,
		SystemRegeneration,
		SystemMicrobiome,
		SystemDNAProtection,
		SystemImmunity,
	}
}

// SystemInfoFor looks up the catalog entry for a system. Unknown systems
// return ok=false so callers can skip them instead of prompting with blanks.
func SystemInfoFor(system DefenseSystem) (SystemInfo, bool) {
	info, ok := systemCatalog[system]
	return info, ok
}

// ParseDefenseSystem normalizes free-form input ("dna-protection",
// "Immunity") to a catalog system.
func ParseDefenseSystem(raw string) (DefenseSystem, bool) {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), "-", "_"))
	system := DefenseSystem(normalized)
	_, ok := systemCatalog[system]
	return system, ok
}

// IsValid reports whether the system exists in the catalog.
func (s DefenseSystem) IsValid() bool {
	_, ok := systemCatalog[s]
	return ok
}

// DisplayName returns the human-readable name, falling back to the raw value
// for systems outside the catalog.
func (s DefenseSystem) DisplayName() string {
	if info, ok := systemCatalog[s]; ok {
		return info.DisplayName
	}
	return string(s)
}
