package scoring

import (
	"testing"

	"go-nutrition-scanner/internal/lexicon"
	"go-nutrition-scanner/internal/nutrition"
)

func record(values map[nutrition.Field]float64) *nutrition.Record {
	rec := nutrition.NewRecord()
	for f, v := range values {
		rec.Set(f, v)
	}
	return rec
}

func TestProcessingClass(t *testing.T) {
	engine := NewEngine(DefaultWeights())

	tests := []struct {
		name        string
		ingredients []string
		want        int
	}{
		{"empty list is indeterminate", nil, 2},
		{"single whole food", []string{"apple"}, 1},
		{"culinary ingredients", []string{"tomato", "olive oil", "sea salt"}, 2},
		{"one ultra marker", []string{"oats", "natural flavor"}, 3},
		{"three ultra markers", []string{"maltodextrin", "red 40", "artificial flavor"}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := engine.ProcessingClass(tt.ingredients); got != tt.want {
				t.Errorf("ProcessingClass(%v) = %d, want %d", tt.ingredients, got, tt.want)
			}
		})
	}
}

func TestProcessingClassLongListBump(t *testing.T) {
	engine := NewEngine(DefaultWeights())

	ingredients := make([]string, 21)
	for i := range ingredients {
		ingredients[i] = "item"
	}
	if got := engine.ProcessingClass(ingredients); got != 2 {
		t.Errorf("21 plain ingredients = class %d, want 2", got)
	}
}

func TestNutrientDensity(t *testing.T) {
	engine := NewEngine(DefaultWeights())

	tests := []struct {
		name   string
		values map[nutrition.Field]float64
		micros map[string]float64
		want   float64
	}{
		{
			name: "protein and fiber at reference",
			values: map[nutrition.Field]float64{
				nutrition.FieldProtein:      10,
				nutrition.FieldDietaryFiber: 8,
				nutrition.FieldSodium:       0,
				nutrition.FieldTotalSugars:  0,
			},
			want: 80,
		},
		{
			name: "penalties drive score to floor",
			values: map[nutrition.Field]float64{
				nutrition.FieldAddedSugars:  20,
				nutrition.FieldSodium:       900,
				nutrition.FieldSaturatedFat: 10,
			},
			want: 0,
		},
		{
			name:   "micros saturate at reference count",
			values: map[nutrition.Field]float64{},
			micros: map[string]float64{"iron": 1, "calcium": 2, "zinc": 3, "niacin": 4},
			want:   20,
		},
		{
			name:   "empty record scores zero",
			values: map[nutrition.Field]float64{},
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := record(tt.values)
			for k, v := range tt.micros {
				rec.Micros[k] = v
			}
			if got := engine.NutrientDensity(rec); got != tt.want {
				t.Errorf("NutrientDensity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAdditiveRisk(t *testing.T) {
	engine := NewEngine(DefaultWeights())

	tests := []struct {
		name        string
		ingredients []string
		want        float64
	}{
		{"clean list", []string{"oats", "water"}, 0},
		{"high severity additive", []string{"Red 40"}, 15},
		{"moderate additive", []string{"Carrageenan"}, 5},
		{"hfcs stacks marker points", []string{"High Fructose Corn Syrup"}, 25},
		{"hydrogenated oil", []string{"Partially Hydrogenated Soybean Oil"}, 40},
		{
			"long clean list dilutes to the floor",
			[]string{
				"Red 40", "water", "rice", "peas", "carrots",
				"celery", "onion", "parsley", "thyme", "bay leaf",
			},
			7.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls := lexicon.Classify(tt.ingredients)
			if got := engine.AdditiveRisk(tt.ingredients, cls); got != tt.want {
				t.Errorf("AdditiveRisk(%v) = %v, want %v", tt.ingredients, got, tt.want)
			}
		})
	}
}

func TestMacrosSumToExactlyOneHundred(t *testing.T) {
	engine := NewEngine(DefaultWeights())

	tests := []struct {
		name    string
		protein float64
		carbs   float64
		fat     float64
	}{
		{"typical snack", 2, 21, 6},
		{"rounding remainder case", 1, 1, 1},
		{"protein dominant", 30, 5, 2},
		{"fat only", 0, 0, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := record(map[nutrition.Field]float64{
				nutrition.FieldProtein:    tt.protein,
				nutrition.FieldTotalCarbs: tt.carbs,
				nutrition.FieldTotalFat:   tt.fat,
			})
			balance := engine.Macros(rec)
			sum := balance.ProteinPct + balance.CarbPct + balance.FatPct
			if sum != 100 {
				t.Errorf("macro split %+v sums to %d, want 100", balance, sum)
			}
		})
	}
}

func TestMacrosAllZeroWhenNoMacroCalories(t *testing.T) {
	engine := NewEngine(DefaultWeights())
	balance := engine.Macros(nutrition.NewRecord())
	if balance != (MacroBalance{}) {
		t.Errorf("macro split = %+v, want all zero", balance)
	}
}

func TestHealthImpact(t *testing.T) {
	engine := NewEngine(DefaultWeights())

	tests := []struct {
		name        string
		values      map[nutrition.Field]float64
		ingredients []string
		system      System
		want        ImpactLabel
	}{
		{
			name:   "sodium above threshold",
			values: map[nutrition.Field]float64{nutrition.FieldSodium: 460},
			system: SystemCardiovascular,
			want:   ImpactElevatedRisk,
		},
		{
			name:   "sodium at threshold stays neutral",
			values: map[nutrition.Field]float64{nutrition.FieldSodium: 400},
			system: SystemCardiovascular,
			want:   ImpactNeutral,
		},
		{
			name:   "any trans fat elevates cardiovascular",
			values: map[nutrition.Field]float64{nutrition.FieldTransFat: 0.5},
			system: SystemCardiovascular,
			want:   ImpactElevatedRisk,
		},
		{
			name: "two cardiovascular factors compound to high risk",
			values: map[nutrition.Field]float64{
				nutrition.FieldSodium:       460,
				nutrition.FieldSaturatedFat: 6,
			},
			system: SystemCardiovascular,
			want:   ImpactHighRisk,
		},
		{
			name:   "sugar above threshold elevates metabolic",
			values: map[nutrition.Field]float64{nutrition.FieldTotalSugars: 16},
			system: SystemMetabolic,
			want:   ImpactElevatedRisk,
		},
		{
			name:        "hfcs elevates metabolic without a sugar reading",
			ingredients: []string{"Water", "High Fructose Corn Syrup"},
			system:      SystemMetabolic,
			want:        ImpactElevatedRisk,
		},
		{
			name:   "fiber supports digestive",
			values: map[nutrition.Field]float64{nutrition.FieldDietaryFiber: 3},
			system: SystemDigestive,
			want:   ImpactSupportive,
		},
		{
			name:        "artificial sweetener overrides fiber support",
			values:      map[nutrition.Field]float64{nutrition.FieldDietaryFiber: 5},
			ingredients: []string{"Chicory Root Fiber", "Sucralose"},
			system:      SystemDigestive,
			want:        ImpactElevatedRisk,
		},
		{
			name:        "anti-inflammatory markers read supportive",
			ingredients: []string{"Turmeric", "Ginger", "Black Pepper"},
			system:      SystemInflammatory,
			want:        ImpactSupportive,
		},
		{
			name:        "synthetic dye reads pro-inflammatory",
			ingredients: []string{"Sugar", "Red 40"},
			system:      SystemInflammatory,
			want:        ImpactElevatedRisk,
		},
		{
			name:   "trans fat reads pro-inflammatory",
			values: map[nutrition.Field]float64{nutrition.FieldTransFat: 0.5},
			system: SystemInflammatory,
			want:   ImpactElevatedRisk,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			impact := engine.HealthImpact(record(tt.values), tt.ingredients)
			if got := impact[tt.system]; got != tt.want {
				t.Errorf("%s = %q, want %q", tt.system, got, tt.want)
			}
		})
	}
}

func TestHealthImpactReportsAllFourSystems(t *testing.T) {
	engine := NewEngine(DefaultWeights())

	impact := engine.HealthImpact(nutrition.NewRecord(), nil)
	for _, system := range []System{
		SystemCardiovascular, SystemMetabolic, SystemDigestive, SystemInflammatory,
	} {
		if _, ok := impact[system]; !ok {
			t.Errorf("health impact missing %s system; got %v", system, impact)
		}
	}
	if len(impact) != 4 {
		t.Errorf("health impact has %d systems, want 4: %v", len(impact), impact)
	}
}

func TestOverallAndRecommend(t *testing.T) {
	engine := NewEngine(DefaultWeights())

	assessment := &Assessment{NutrientDensity: 80, AdditiveRisk: 0, ProcessingClass: 2}
	if got := engine.Overall(assessment); got != 80 {
		t.Errorf("Overall() = %v, want 80", got)
	}

	tests := []struct {
		score float64
		want  Recommendation
	}{
		{80, RecommendSafe},
		{75, RecommendSafe},
		{74.9, RecommendModerate},
		{50, RecommendModerate},
		{49.9, RecommendAvoid},
		{0, RecommendAvoid},
	}
	for _, tt := range tests {
		if got := engine.Recommend(tt.score); got != tt.want {
			t.Errorf("Recommend(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
