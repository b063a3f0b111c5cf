// Package lexicon holds the ingredient knowledge base: beneficial
// compounds, concerning additives with severity, and common allergens.
// All vocabularies are package-level and read-only after init, so
// classification is safe for concurrent use.
package lexicon

// Severity grades a concerning additive
type Severity string

const (
	SeverityHigh     Severity = "high"
	SeverityModerate Severity = "moderate"
)

// beneficial lists compounds associated with positive nutrition signals.
// Matching is whole-word on the lowercased ingredient.
var beneficial = []string{
	"whole grain", "whole wheat", "oat", "quinoa", "brown rice",
	"flaxseed", "chia", "almond", "walnut",
	"olive oil", "avocado oil",
	"spinach", "kale", "broccoli", "carrot", "tomato",
	"blueberry", "cranberry", "pomegranate",
	"turmeric", "ginger", "garlic",
	"probiotic", "live cultures", "inulin", "chicory root",
	"pea protein", "whey protein", "lentil", "chickpea", "black bean",
}

// concerning maps additive markers to severity. High severity entries are
// additives with documented health concerns at typical intake; moderate
// entries are controversial or problematic in excess.
var concerning = map[string]Severity{
	"sodium nitrite":         SeverityHigh,
	"sodium nitrate":         SeverityHigh,
	"bha":                    SeverityHigh,
	"bht":                    SeverityHigh,
	"tbhq":                   SeverityHigh,
	"potassium bromate":      SeverityHigh,
	"red 40":                 SeverityHigh,
	"red dye 40":             SeverityHigh,
	"yellow 5":               SeverityHigh,
	"yellow 6":               SeverityHigh,
	"blue 1":                 SeverityHigh,
	"artificial color":       SeverityHigh,
	"artificial colors":      SeverityHigh,
	"partially hydrogenated": SeverityHigh,
	"trans fat":              SeverityHigh,

	"sodium benzoate":          SeverityModerate,
	"potassium sorbate":        SeverityModerate,
	"aspartame":                SeverityModerate,
	"acesulfame potassium":     SeverityModerate,
	"acesulfame k":             SeverityModerate,
	"sucralose":                SeverityModerate,
	"saccharin":                SeverityModerate,
	"monosodium glutamate":     SeverityModerate,
	"msg":                      SeverityModerate,
	"high fructose corn syrup": SeverityModerate,
	"hfcs":                     SeverityModerate,
	"phosphoric acid":          SeverityModerate,
	"sodium phosphate":         SeverityModerate,
	"carrageenan":              SeverityModerate,
	"artificial flavor":        SeverityModerate,
	"artificial flavors":       SeverityModerate,
	"shortening":               SeverityModerate,
}

// allergens maps the major allergen families to their common label
// appearances, including derivative ingredients.
var allergens = map[string][]string{
	"milk":      {"milk", "dairy", "whey", "casein", "lactose", "butter", "cream", "cheese"},
	"egg":       {"egg", "albumin", "albumen"},
	"fish":      {"fish", "anchovy", "cod", "salmon", "tuna"},
	"shellfish": {"shellfish", "shrimp", "crab", "lobster", "prawn"},
	"tree nuts": {"almond", "cashew", "walnut", "pecan", "pistachio", "hazelnut", "macadamia", "brazil nut"},
	"peanut":    {"peanut"},
	"wheat":     {"wheat", "gluten", "barley", "rye", "malt"},
	"soy":       {"soy", "soybean", "soy lecithin", "soya"},
	"sesame":    {"sesame", "tahini"},
}
