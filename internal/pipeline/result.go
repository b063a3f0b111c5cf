package pipeline

import (
	"time"

	"go-nutrition-scanner/internal/extract"
	"go-nutrition-scanner/internal/lexicon"
	"go-nutrition-scanner/internal/nutrition"
	"go-nutrition-scanner/internal/scoring"
)

// Provenance records which extraction tier produced the accepted text and
// how confident it was. Every result carries provenance so a catalog hit
// and a last-resort local OCR read are distinguishable downstream.
type Provenance struct {
	Tier       extract.TierKind        `json:"tier"`
	Confidence extract.ConfidenceLabel `json:"confidence"`
	ElapsedMS  int64                   `json:"elapsed_ms"`
}

// AnalysisResult is the complete immutable outcome of one analysis.
// Results are never mutated after assembly; enrichment such as generated
// explanations travels alongside, not inside.
type AnalysisResult struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Provenance  Provenance                `json:"provenance"`
	ProductName string                    `json:"product_name,omitempty"`
	Nutrition   *nutrition.Record         `json:"nutrition"`
	Ingredients *nutrition.IngredientList `json:"ingredients"`
	Classified  *lexicon.Classification   `json:"classified"`
	Assessment  *scoring.Assessment       `json:"assessment"`

	OverallScore   float64                `json:"overall_score"`
	Recommendation scoring.Recommendation `json:"recommendation"`

	Claims   []string `json:"claims,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}
