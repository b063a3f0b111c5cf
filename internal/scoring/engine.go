package scoring

import (
	"math"
	"strings"

	"go-nutrition-scanner/internal/lexicon"
	"go-nutrition-scanner/internal/nutrition"
)

// System is a body system receiving a qualitative health-impact label
type System string

const (
	SystemCardiovascular System = "cardiovascular"
	SystemMetabolic      System = "metabolic"
	SystemDigestive      System = "digestive"
	SystemInflammatory   System = "inflammatory"
)

// ImpactLabel is the qualitative per-system verdict
type ImpactLabel string

const (
	ImpactHighRisk     ImpactLabel = "high_risk"
	ImpactElevatedRisk ImpactLabel = "elevated_risk"
	ImpactNeutral      ImpactLabel = "neutral"
	ImpactSupportive   ImpactLabel = "supportive"
)

// Recommendation is the final three-way verdict
type Recommendation string

const (
	RecommendSafe     Recommendation = "safe"
	RecommendModerate Recommendation = "moderate"
	RecommendAvoid    Recommendation = "avoid"
)

// MacroBalance is the caloric split across macronutrients in whole
// percentage points. The three values sum to exactly 100 unless no macro
// calories are known at all, in which case all three are zero.
type MacroBalance struct {
	ProteinPct int `json:"protein_pct"`
	CarbPct    int `json:"carb_pct"`
	FatPct     int `json:"fat_pct"`
}

// Assessment is the complete scored view of one product
type Assessment struct {
	ProcessingClass int                    `json:"processing_class"`
	NutrientDensity float64                `json:"nutrient_density"`
	AdditiveRisk    float64                `json:"additive_risk"`
	MacroBalance    MacroBalance           `json:"macro_balance"`
	HealthImpact    map[System]ImpactLabel `json:"health_impact"`
	WeightsVersion  string                 `json:"weights_version"`
}

// ultraMarkers flag industrial formulation: an ingredient containing any of
// these counts toward ultra-processed classification.
var ultraMarkers = []string{
	"high fructose corn syrup", "hfcs", "hydrogenated",
	"modified starch", "modified corn starch", "maltodextrin",
	"dextrose", "glucose syrup", "corn syrup", "invert sugar",
	"artificial", "natural flavor", "flavoring",
	"preservative", "emulsifier", "stabilizer", "thickener",
	"colorant", "color added", "sweetener",
	"red 40", "yellow 5", "yellow 6", "blue 1",
	"monosodium glutamate", "msg",
	"soy protein isolate", "hydrolyzed",
}

// culinaryMarkers are processed culinary ingredients: their presence
// distinguishes processed from unprocessed food without implying
// industrial formulation.
var culinaryMarkers = []string{
	"oil", "sugar", "salt", "vinegar", "flour", "butter", "lard", "honey",
}

// antiInflammatoryMarkers and proInflammatoryColorMarkers drive the
// inflammatory-system label: anti markers outnumbering pro factors reads
// as supportive, any pro factor as elevated.
var antiInflammatoryMarkers = []string{
	"omega-3", "omega 3", "turmeric", "ginger",
}

var proInflammatoryColorMarkers = []string{
	"red 40", "red dye 40", "yellow 6", "blue 1",
}

// artificialSweetenerMarkers flag non-nutritive sweeteners associated with
// gut-microbiome disruption.
var artificialSweetenerMarkers = []string{
	"aspartame", "sucralose", "saccharin", "acesulfame", "artificial sweetener",
}

// Engine computes assessments from a fixed weight set. Scoring is pure:
// the same inputs always produce the same assessment.
type Engine struct {
	w Weights
}

// NewEngine creates a scoring engine with the given weights
func NewEngine(w Weights) *Engine {
	return &Engine{w: w}
}

// Score assesses one product from its nutrition record, ordered ingredient
// list and ingredient classification.
func (e *Engine) Score(rec *nutrition.Record, ingredients []string, cls *lexicon.Classification) *Assessment {
	return &Assessment{
		ProcessingClass: e.ProcessingClass(ingredients),
		NutrientDensity: e.NutrientDensity(rec),
		AdditiveRisk:    e.AdditiveRisk(ingredients, cls),
		MacroBalance:    e.Macros(rec),
		HealthImpact:    e.HealthImpact(rec, ingredients),
		WeightsVersion:  e.w.Version,
	}
}

// ProcessingClass assigns the 1..4 processing class from formulation
// markers. An empty ingredient list cannot distinguish minimally processed
// from processed, so it lands in the middle at class 2. Lists longer than
// the threshold are bumped one class: nothing with that many ingredients
// is minimally processed.
func (e *Engine) ProcessingClass(ingredients []string) int {
	if len(ingredients) == 0 {
		return 2
	}

	ultra, culinary := 0, 0
	for _, ingredient := range ingredients {
		lower := strings.ToLower(ingredient)
		switch {
		case containsAny(lower, ultraMarkers):
			ultra++
		case containsAny(lower, culinaryMarkers):
			culinary++
		}
	}

	class := 1
	switch {
	case ultra >= e.w.UltraMarkersClass4:
		class = 4
	case ultra >= e.w.UltraMarkersClass3:
		class = 3
	case culinary >= e.w.CulinaryMarkers:
		class = 2
	}

	if len(ingredients) > e.w.LongListThreshold && class < 4 {
		class++
	}
	return class
}

// NutrientDensity scores 0..100 from protein, fiber and micronutrient
// contributions, minus penalties for added sugar, sodium and saturated
// fat. Each term saturates at its reference amount. Unknown fields
// contribute nothing in either direction.
func (e *Engine) NutrientDensity(rec *nutrition.Record) float64 {
	score := e.w.ProteinWeight*ratio(rec.Value(nutrition.FieldProtein), e.w.ProteinRef) +
		e.w.FiberWeight*ratio(rec.Value(nutrition.FieldDietaryFiber), e.w.FiberRef) +
		e.w.MicroWeight*ratio(float64(len(rec.Micros)), e.w.MicroRef)

	score -= e.w.AddedSugarPenalty * ratio(e.sugarAmount(rec), e.w.AddedSugarRef)
	score -= e.w.SodiumPenalty * ratio(rec.Value(nutrition.FieldSodium), e.w.SodiumRef)
	score -= e.w.SatFatPenalty * ratio(rec.Value(nutrition.FieldSaturatedFat), e.w.SatFatRef)

	return clamp(score, 0, 100)
}

// sugarAmount prefers the added-sugars line and falls back to total sugars
// when the label predates the added-sugars requirement.
func (e *Engine) sugarAmount(rec *nutrition.Record) float64 {
	if rec.Known(nutrition.FieldAddedSugars) {
		return rec.Value(nutrition.FieldAddedSugars)
	}
	return rec.Value(nutrition.FieldTotalSugars)
}

// AdditiveRisk accumulates risk points from classified concerning
// additives plus formulation red flags, then scales by the concerning
// share of the ingredient list (floored, so a lone bad actor in a long
// list is diluted but never vanishes).
func (e *Engine) AdditiveRisk(ingredients []string, cls *lexicon.Classification) float64 {
	risk := 0.0
	for _, item := range cls.Concerning {
		if sev, ok := cls.ConcernSeverity(item); ok && sev == lexicon.SeverityHigh {
			risk += e.w.HighSeverityPoints
		} else {
			risk += e.w.ModerateSeverityPoints
		}
	}

	joined := strings.ToLower(strings.Join(ingredients, "|"))
	if strings.Contains(joined, "high fructose corn syrup") || strings.Contains(joined, "hfcs") {
		risk += e.w.HFCSPoints
	}
	if strings.Contains(joined, "hydrogenated") {
		risk += e.w.HydrogenatedPoints
	}
	if len(ingredients) > e.w.LongListThreshold {
		risk += e.w.LongListPoints
	}

	if len(ingredients) > 0 {
		ratio := float64(len(cls.Concerning)) / float64(len(ingredients))
		risk *= math.Max(e.w.ConcentrationFloor, ratio)
	}

	return clamp(risk, 0, 100)
}

// Macros converts grams of protein, carbohydrate and fat to a whole-percent
// caloric split (4/4/9 kcal per gram). Rounding remainder goes to the
// largest share so the parts always total 100.
func (e *Engine) Macros(rec *nutrition.Record) MacroBalance {
	proteinKcal := rec.Value(nutrition.FieldProtein) * 4
	carbKcal := rec.Value(nutrition.FieldTotalCarbs) * 4
	fatKcal := rec.Value(nutrition.FieldTotalFat) * 9

	total := proteinKcal + carbKcal + fatKcal
	if total == 0 {
		return MacroBalance{}
	}

	protein := int(math.Round(proteinKcal / total * 100))
	carb := int(math.Round(carbKcal / total * 100))
	fat := int(math.Round(fatKcal / total * 100))

	remainder := 100 - (protein + carb + fat)
	switch {
	case proteinKcal >= carbKcal && proteinKcal >= fatKcal:
		protein += remainder
	case carbKcal >= fatKcal:
		carb += remainder
	default:
		fat += remainder
	}

	return MacroBalance{ProteinPct: protein, CarbPct: carb, FatPct: fat}
}

// HealthImpact labels each tracked body system from the record's
// threshold exceedances and ingredient-level markers. Rules are
// independent; multiple systems may report elevated risk at once.
func (e *Engine) HealthImpact(rec *nutrition.Record, ingredients []string) map[System]ImpactLabel {
	impact := map[System]ImpactLabel{
		SystemCardiovascular: ImpactNeutral,
		SystemMetabolic:      ImpactNeutral,
		SystemDigestive:      ImpactNeutral,
		SystemInflammatory:   ImpactNeutral,
	}

	joined := strings.ToLower(strings.Join(ingredients, " "))

	cardioFactors := 0
	if rec.Value(nutrition.FieldSodium) > e.w.SodiumElevatedMG {
		cardioFactors++
	}
	if rec.Value(nutrition.FieldSaturatedFat) > e.w.SatFatElevatedG {
		cardioFactors++
	}
	if rec.Value(nutrition.FieldTransFat) > 0 {
		cardioFactors++
	}
	switch {
	case cardioFactors >= 2:
		impact[SystemCardiovascular] = ImpactHighRisk
	case cardioFactors == 1:
		impact[SystemCardiovascular] = ImpactElevatedRisk
	}

	if e.sugarAmount(rec) > e.w.SugarElevatedG ||
		strings.Contains(joined, "high fructose corn syrup") ||
		strings.Contains(joined, "hfcs") {
		impact[SystemMetabolic] = ImpactElevatedRisk
	}

	switch {
	case containsAny(joined, artificialSweetenerMarkers):
		impact[SystemDigestive] = ImpactElevatedRisk
	case rec.Value(nutrition.FieldDietaryFiber) >= e.w.FiberSupportiveG:
		impact[SystemDigestive] = ImpactSupportive
	}

	anti := 0
	for _, marker := range antiInflammatoryMarkers {
		if strings.Contains(joined, marker) {
			anti++
		}
	}
	pro := 0
	if strings.Contains(joined, "trans fat") || rec.Value(nutrition.FieldTransFat) > 0 {
		pro++
	}
	if containsAny(joined, proInflammatoryColorMarkers) {
		pro++
	}
	switch {
	case anti > pro:
		impact[SystemInflammatory] = ImpactSupportive
	case pro > 0:
		impact[SystemInflammatory] = ImpactElevatedRisk
	}

	return impact
}

// Overall collapses an assessment to the 0..100 composite score
func (e *Engine) Overall(a *Assessment) float64 {
	score := e.w.OverallBase +
		e.w.DensityFactor*a.NutrientDensity -
		e.w.RiskFactor*a.AdditiveRisk -
		e.w.ProcessingStepFactor*float64(a.ProcessingClass-1)
	return clamp(score, 0, 100)
}

// Recommend maps the composite score to the three-way verdict
func (e *Engine) Recommend(score float64) Recommendation {
	switch {
	case score >= e.w.SafeCutoff:
		return RecommendSafe
	case score >= e.w.ModerateCutoff:
		return RecommendModerate
	default:
		return RecommendAvoid
	}
}

func containsAny(lower string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func ratio(v, ref float64) float64 {
	if ref <= 0 || v <= 0 {
		return 0
	}
	return math.Min(1, v/ref)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
