package nutrition

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/arbovm/levenshtein"

	"go-nutrition-scanner/internal/extract"
)

// maxIngredients caps the parsed ingredient list; anything longer is OCR
// noise or legal boilerplate rather than a real formulation.
const maxIngredients = 25

// saltToSodiumMG converts label salt in grams to sodium in milligrams
// (1 g salt ≈ 400 mg sodium).
const saltToSodiumMG = 400.0

// ParseResult bundles the parser outputs. Warnings are non-fatal: the
// record always proceeds with whatever fields were recognized.
type ParseResult struct {
	Record      *Record
	Ingredients *IngredientList
	Claims      []string
	Warnings    []string
}

type unitClass int

const (
	unitKcal unitClass = iota
	unitGrams
	unitMilligrams
)

// fieldRule pairs a panel field with its label synonyms. Synonyms are
// lowercase; the longest synonym found on a line wins, so "saturated fat"
// beats the bare "fat" of the total-fat rule.
type fieldRule struct {
	field    Field
	synonyms []string
	unit     unitClass
}

var fieldRules = []fieldRule{
	{FieldCalories, []string{"calories", "energy", "kcal"}, unitKcal},
	{FieldTotalFat, []string{"total fat", "total fats", "fat"}, unitGrams},
	{FieldSaturatedFat, []string{"saturated fat", "sat fat", "saturated"}, unitGrams},
	{FieldTransFat, []string{"trans fat", "trans fatty acids", "trans"}, unitGrams},
	{FieldCholesterol, []string{"cholesterol", "cholest"}, unitMilligrams},
	{FieldSodium, []string{"sodium", "salt"}, unitMilligrams},
	{FieldTotalCarbs, []string{"total carbohydrate", "total carbohydrates", "carbohydrates", "carbohydrate", "total carbs", "carbs"}, unitGrams},
	{FieldDietaryFiber, []string{"dietary fiber", "dietary fibre", "fiber", "fibre"}, unitGrams},
	{FieldAddedSugars, []string{"includes added sugars", "added sugars", "added sugar"}, unitGrams},
	{FieldTotalSugars, []string{"total sugars", "total sugar", "sugars", "sugar"}, unitGrams},
	{FieldProtein, []string{"protein", "proteins"}, unitGrams},
}

// validRanges bounds each field to physically plausible per-serving values;
// out-of-range parses are OCR garbage and are dropped with a warning.
var validRanges = map[Field][2]float64{
	FieldCalories:     {0, 2000},
	FieldTotalFat:     {0, 100},
	FieldSaturatedFat: {0, 50},
	FieldTransFat:     {0, 10},
	FieldCholesterol:  {0, 1000},
	FieldSodium:       {0, 5000},
	FieldTotalCarbs:   {0, 200},
	FieldDietaryFiber: {0, 50},
	FieldTotalSugars:  {0, 100},
	FieldAddedSugars:  {0, 100},
	FieldProtein:      {0, 100},
}

// microNames is the recognized micronutrient vocabulary. Amounts are kept
// verbatim under a normalized key; presence, not magnitude, drives scoring.
var microNames = []string{
	"vitamin a", "vitamin b12", "vitamin b6", "vitamin c", "vitamin d",
	"vitamin e", "vitamin k", "thiamine", "riboflavin", "niacin",
	"folate", "folic acid", "calcium", "iron", "potassium",
	"magnesium", "phosphorus", "zinc",
}

var claimMarkers = []string{
	"fat free", "low fat", "reduced fat",
	"sugar free", "no added sugar", "low sugar",
	"sodium free", "low sodium", "reduced sodium",
	"high fiber", "good source of fiber",
	"organic", "all natural", "non-gmo", "gmo free",
	"gluten free", "dairy free", "lactose free",
	"whole grain", "multigrain",
	"no artificial", "no preservatives",
	"kosher", "halal", "vegan", "vegetarian",
}

var (
	numberRe      = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(g|mg|mcg|µg|kcal|cal|%)?`)
	servingRe     = regexp.MustCompile(`(?i)serving size\s*[:.]?\s*([^\n\r]+)`)
	parentheticRe = regexp.MustCompile(`\([^)]*\)`)
	tokenSplitRe  = regexp.MustCompile(`[^a-z]+`)
)

// Parse converts accepted raw text (or an already-structured catalog hint)
// into a typed nutrition record, ingredient list and label claims. Field
// level failures never abort the parse: the field stays unknown and a
// warning is recorded. Parsing is pure, so identical input yields an
// identical result.
func Parse(text string, hint *extract.StructuredHint) *ParseResult {
	if hint != nil {
		return parseHint(hint)
	}

	res := &ParseResult{
		Record:      NewRecord(),
		Ingredients: &IngredientList{},
	}

	ingredientsText, remainder := splitIngredientsSection(text)
	res.Ingredients.Items = cleanIngredients(ingredientsText)
	res.Claims = scanClaims(text)

	if m := servingRe.FindStringSubmatch(remainder); m != nil {
		res.Record.ServingSize = strings.TrimSpace(m[1])
	}

	for _, line := range strings.Split(remainder, "\n") {
		lower := strings.ToLower(line)
		parseFieldLine(res, lower)
		parseMicroLine(res.Record, lower)
	}

	validateRanges(res)
	return res
}

// parseHint short-circuits free-text parsing with catalog data. The hint is
// still range-checked: catalog records are occasionally garbage too.
func parseHint(hint *extract.StructuredHint) *ParseResult {
	res := &ParseResult{
		Record:      NewRecord(),
		Ingredients: &IngredientList{},
	}
	res.Record.ServingSize = hint.ServingSize

	for _, f := range CoreFields {
		if v, ok := hint.Nutrients[string(f)]; ok {
			res.Record.Set(f, v)
		}
	}
	for name, v := range hint.Nutrients {
		if !isCoreField(name) && v >= 0 {
			res.Record.Micros[normalizeMicroName(name)] = v
		}
	}

	res.Ingredients.Items = dedupeIngredients(hint.Ingredients)
	res.Claims = append(res.Claims, hint.Claims...)

	validateRanges(res)
	return res
}

// parseFieldLine applies the per-field recognition rules to one lowercased
// line. The longest matching synonym on the line decides which field the
// number belongs to; the first recognized occurrence of a field wins
// overall, so footnote lines cannot overwrite the panel value.
func parseFieldLine(res *ParseResult, lower string) {
	var (
		best      *fieldRule
		bestEnd   int
		bestLen   int
		bestSyn   string
		bestFuzzy bool
	)

	for i := range fieldRules {
		rule := &fieldRules[i]
		if res.Record.Known(rule.field) {
			continue
		}
		if rule.field == FieldCalories && skipCaloriesLine(lower) {
			continue
		}
		matched := false
		for _, syn := range rule.synonyms {
			if pos := strings.Index(lower, syn); pos >= 0 {
				if len(syn) > bestLen {
					best, bestEnd, bestLen, bestSyn, bestFuzzy = rule, pos+len(syn), len(syn), syn, false
				}
				matched = true
				break
			}
		}
		if !matched {
			if pos, tok, syn, ok := fuzzyFindSynonym(lower, rule.synonyms); ok && len(syn) > bestLen {
				best, bestEnd, bestLen, bestSyn, bestFuzzy = rule, pos+len(tok), len(syn), syn, true
			}
		}
	}

	if best == nil {
		return
	}

	value, unit, ok := numberAfter(lower, bestEnd)
	if !ok {
		// "Includes 8g Added Sugars" prints the amount before the label
		value, unit, ok = numberAfter(lower, 0)
	}
	if !ok {
		// A bare synonym with no number is common on wrapped header lines
		// ("Total Fat" alone); only warn when the match was exact.
		if !bestFuzzy {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("no numeric value recognized near %q", bestSyn))
		}
		return
	}

	res.Record.Set(best.field, convertUnits(best, bestSyn, value, unit))
}

// skipCaloriesLine guards the calories rule against the classic OCR traps:
// the word "calcium" and the "Calories from Fat" sub-line.
func skipCaloriesLine(lower string) bool {
	if strings.Contains(lower, "from fat") {
		return true
	}
	return strings.Contains(lower, "calcium") && !strings.Contains(lower, "calorie")
}

// fuzzyFindSynonym matches OCR-garbled single-word labels ("sodiurn",
// "proteiin") against the rule vocabulary by edit distance. Short words are
// excluded: at four letters or fewer almost everything is one edit away
// from something.
func fuzzyFindSynonym(lower string, synonyms []string) (int, string, string, bool) {
	for _, syn := range synonyms {
		if len(syn) < 5 || strings.Contains(syn, " ") {
			continue
		}
		allowed := 1
		if len(syn) >= 7 {
			allowed = 2
		}
		for _, tok := range tokenSplitRe.Split(lower, -1) {
			if tok == "" || tok == syn || abs(len(tok)-len(syn)) > allowed {
				continue
			}
			if levenshtein.Distance(tok, syn) <= allowed {
				return strings.Index(lower, tok), tok, syn, true
			}
		}
	}
	return 0, "", "", false
}

// numberAfter extracts the first non-percentage numeric token at or after
// the given offset, along with its printed unit.
func numberAfter(lower string, offset int) (float64, string, bool) {
	if offset > len(lower) {
		return 0, "", false
	}
	for _, m := range numberRe.FindAllStringSubmatch(lower[offset:], -1) {
		if m[2] == "%" {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		return v, m[2], true
	}
	return 0, "", false
}

// convertUnits normalizes a parsed amount to the field's native unit:
// grams for macronutrients, milligrams for sodium and cholesterol. The
// "salt" synonym converts declared salt to equivalent sodium.
func convertUnits(rule *fieldRule, matchedSyn string, v float64, unit string) float64 {
	if rule.field == FieldSodium && matchedSyn == "salt" {
		if unit == "mg" {
			return v * saltToSodiumMG / 1000
		}
		return v * saltToSodiumMG
	}

	switch rule.unit {
	case unitGrams:
		switch unit {
		case "mg":
			return v / 1000
		case "mcg", "µg":
			return v / 1e6
		}
	case unitMilligrams:
		if unit == "g" {
			return v * 1000
		}
	}
	return v
}

// parseMicroLine records any recognized micronutrient mention with a
// non-percentage amount on the line.
func parseMicroLine(rec *Record, lower string) {
	for _, name := range microNames {
		pos := strings.Index(lower, name)
		if pos < 0 {
			continue
		}
		key := normalizeMicroName(name)
		if _, ok := rec.Micros[key]; ok {
			continue
		}
		if v, _, ok := numberAfter(lower, pos+len(name)); ok {
			rec.Micros[key] = v
		}
	}
}

// splitIngredientsSection carves the ingredient declaration out of the
// text so its contents (sugar, salt, oil) are not mistaken for panel
// fields. It returns the ingredient segment and the remaining text.
func splitIngredientsSection(text string) (string, string) {
	lower := strings.ToLower(text)
	start := strings.Index(lower, "ingredients")
	if start < 0 {
		return "", text
	}

	after := text[start+len("ingredients"):]
	afterLower := lower[start+len("ingredients"):]

	end := len(after)
	for _, term := range []string{"nutrition facts", "\nnutrition", "contains:", "may contain", "allergen", "\n\n"} {
		if idx := strings.Index(afterLower, term); idx >= 0 && idx < end {
			end = idx
		}
	}

	segment := strings.TrimLeft(after[:end], ": \t")
	remainder := text[:start] + after[end:]
	return segment, remainder
}

// cleanIngredients turns the raw ingredient declaration into an ordered,
// deduplicated list. Parenthetical sub-ingredients are dropped so "Milk
// (Vitamin D Added)" reads as one ingredient.
func cleanIngredients(segment string) []string {
	if strings.TrimSpace(segment) == "" {
		return nil
	}
	flat := parentheticRe.ReplaceAllString(strings.ReplaceAll(segment, "\n", " "), "")
	parts := strings.FieldsFunc(flat, func(r rune) bool {
		return r == ',' || r == ';'
	})

	var items []string
	for _, part := range parts {
		if item := strings.Trim(strings.TrimSpace(part), ". "); len(item) > 1 {
			items = append(items, item)
		}
	}
	return dedupeIngredients(items)
}

// dedupeIngredients removes case-insensitive duplicates while preserving
// label order, then applies the list cap.
func dedupeIngredients(items []string) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
		if len(out) == maxIngredients {
			break
		}
	}
	return out
}

func scanClaims(text string) []string {
	lower := strings.ToLower(text)
	var claims []string
	for _, marker := range claimMarkers {
		if strings.Contains(lower, marker) {
			claims = append(claims, marker)
		}
	}
	return claims
}

// validateRanges drops values outside the plausible per-serving bounds and
// records a warning for each, leaving the field unknown.
func validateRanges(res *ParseResult) {
	for _, f := range CoreFields {
		if !res.Record.Known(f) {
			continue
		}
		bounds := validRanges[f]
		v := res.Record.Value(f)
		if v < bounds[0] || v > bounds[1] {
			delete(res.Record.Values, f)
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("%s value %g outside plausible range, discarded", f, v))
		}
	}
}

func isCoreField(name string) bool {
	for _, f := range CoreFields {
		if string(f) == name {
			return true
		}
	}
	return false
}

func normalizeMicroName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
