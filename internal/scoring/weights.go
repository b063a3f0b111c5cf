package scoring

// Weights collects every tunable constant in the scoring model under a
// version tag. Results persist the version so historical scores remain
// interpretable after recalibration.
type Weights struct {
	Version string

	// Nutrient density: positive contributions saturate at the reference
	// amounts, penalties scale against theirs.
	ProteinRef    float64
	FiberRef      float64
	MicroRef      float64
	ProteinWeight float64
	FiberWeight   float64
	MicroWeight   float64

	AddedSugarRef     float64
	SodiumRef         float64
	SatFatRef         float64
	AddedSugarPenalty float64
	SodiumPenalty     float64
	SatFatPenalty     float64

	// Additive risk points
	HighSeverityPoints     float64
	ModerateSeverityPoints float64
	HFCSPoints             float64
	HydrogenatedPoints     float64
	LongListPoints         float64
	LongListThreshold      int
	// ConcentrationFloor bounds how far a long ingredient list can dilute
	// accumulated risk points.
	ConcentrationFloor float64

	// Processing classification marker counts
	UltraMarkersClass4 int
	UltraMarkersClass3 int
	CulinaryMarkers    int

	// Health impact thresholds, label-native units
	SodiumElevatedMG float64
	SatFatElevatedG  float64
	SugarElevatedG   float64
	FiberSupportiveG float64

	// Overall score composition and recommendation cutoffs
	OverallBase          float64
	DensityFactor        float64
	RiskFactor           float64
	ProcessingStepFactor float64
	SafeCutoff           float64
	ModerateCutoff       float64
}

// DefaultWeights is the calibrated v1 model
func DefaultWeights() Weights {
	return Weights{
		Version: "v1",

		ProteinRef:    10,
		FiberRef:      5,
		MicroRef:      3,
		ProteinWeight: 40,
		FiberWeight:   40,
		MicroWeight:   20,

		AddedSugarRef:     10,
		SodiumRef:         600,
		SatFatRef:         5,
		AddedSugarPenalty: 30,
		SodiumPenalty:     30,
		SatFatPenalty:     25,

		HighSeverityPoints:     15,
		ModerateSeverityPoints: 5,
		HFCSPoints:             20,
		HydrogenatedPoints:     25,
		LongListPoints:         10,
		LongListThreshold:      20,
		ConcentrationFloor:     0.5,

		UltraMarkersClass4: 3,
		UltraMarkersClass3: 1,
		CulinaryMarkers:    2,

		SodiumElevatedMG: 400,
		SatFatElevatedG:  5,
		SugarElevatedG:   15,
		FiberSupportiveG: 3,

		OverallBase:          20,
		DensityFactor:        0.8,
		RiskFactor:           0.4,
		ProcessingStepFactor: 4,
		SafeCutoff:           75,
		ModerateCutoff:       50,
	}
}
