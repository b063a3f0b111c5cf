package nutrition

// Field names one nutrient on the nutrition-facts panel. The canonical
// names double as the structured-hint vocabulary used by the catalog tier.
type Field string

const (
	FieldCalories     Field = "calories"
	FieldTotalFat     Field = "total_fat"
	FieldSaturatedFat Field = "saturated_fat"
	FieldTransFat     Field = "trans_fat"
	FieldCholesterol  Field = "cholesterol"
	FieldSodium       Field = "sodium"
	FieldTotalCarbs   Field = "total_carbs"
	FieldDietaryFiber Field = "dietary_fiber"
	FieldTotalSugars  Field = "total_sugars"
	FieldAddedSugars  Field = "added_sugars"
	FieldProtein      Field = "protein"
)

// CoreFields is the fixed panel vocabulary, in label order
var CoreFields = []Field{
	FieldCalories, FieldTotalFat, FieldSaturatedFat, FieldTransFat,
	FieldCholesterol, FieldSodium, FieldTotalCarbs, FieldDietaryFiber,
	FieldTotalSugars, FieldAddedSugars, FieldProtein,
}

// Record is a typed nutrition-facts record. Gram-denominated fields are
// stored in grams; sodium and cholesterol stay in milligrams as printed on
// labels. Missing fields read as 0 for downstream math but are tracked
// separately so callers can render "unknown" instead of a misleading zero.
type Record struct {
	ServingSize string             `json:"serving_size,omitempty"`
	Values      map[Field]float64  `json:"values"`
	Micros      map[string]float64 `json:"micros,omitempty"`
}

// NewRecord creates an empty record with no known fields
func NewRecord() *Record {
	return &Record{
		Values: make(map[Field]float64),
		Micros: make(map[string]float64),
	}
}

// Set records a recognized field value. Negative amounts are invalid on a
// label and are ignored.
func (r *Record) Set(f Field, v float64) {
	if v < 0 {
		return
	}
	r.Values[f] = v
}

// Value returns the field amount, defaulting to 0 when unknown
func (r *Record) Value(f Field) float64 {
	return r.Values[f]
}

// Known reports whether the field was actually recognized
func (r *Record) Known(f Field) bool {
	_, ok := r.Values[f]
	return ok
}

// KnownFields returns the recognized fields in label order
func (r *Record) KnownFields() []Field {
	var out []Field
	for _, f := range CoreFields {
		if r.Known(f) {
			out = append(out, f)
		}
	}
	return out
}

// UnknownFields returns the unrecognized fields in label order
func (r *Record) UnknownFields() []Field {
	var out []Field
	for _, f := range CoreFields {
		if !r.Known(f) {
			out = append(out, f)
		}
	}
	return out
}

// IngredientList is the ordered ingredient sequence as printed on the
// label. Order is meaningful: the first ingredient dominates by weight.
type IngredientList struct {
	Items []string `json:"items"`
}
