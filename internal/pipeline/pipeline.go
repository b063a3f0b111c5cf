package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"go-nutrition-scanner/internal/extract"
	"go-nutrition-scanner/internal/lexicon"
	"go-nutrition-scanner/internal/logger"
	"go-nutrition-scanner/internal/nutrition"
	"go-nutrition-scanner/internal/preprocess"
	"go-nutrition-scanner/internal/scoring"
)

// Extractor is the tier chain as the pipeline sees it
type Extractor interface {
	Run(ctx context.Context, req extract.Request) (*extract.RawExtraction, error)
}

// Pipeline runs the full analysis: normalize the photo, extract label text
// through the tier chain, parse it into a typed record, classify the
// ingredients and score the result. The pipeline is stateless and safe for
// concurrent use.
type Pipeline struct {
	extractor Extractor
	engine    *scoring.Engine
}

// New creates an analysis pipeline
func New(extractor Extractor, engine *scoring.Engine) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		engine:    engine,
	}
}

// Analyze processes one label photo end to end. Unsupported or undecodable
// images fail fast; extraction exhaustion surfaces the attempt trail;
// everything after an accepted extraction degrades with warnings instead
// of failing.
func (p *Pipeline) Analyze(ctx context.Context, image []byte, mime, barcode, productName string) (*AnalysisResult, error) {
	start := time.Now()

	normalized, err := preprocess.Normalize(image, mime)
	if err != nil {
		return nil, err
	}

	raw, err := p.extractor.Run(ctx, extract.Request{
		Image:       normalized,
		Barcode:     barcode,
		ProductName: productName,
	})
	if err != nil {
		return nil, err
	}

	parsed := nutrition.Parse(raw.Text, raw.Hint)
	classified := lexicon.Classify(parsed.Ingredients.Items)
	assessment := p.engine.Score(parsed.Record, parsed.Ingredients.Items, classified)
	overall := p.engine.Overall(assessment)

	result := &AnalysisResult{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Provenance: Provenance{
			Tier:       raw.Tier,
			Confidence: raw.Label,
			ElapsedMS:  raw.ElapsedMS,
		},
		ProductName:    resolveProductName(raw, productName),
		Nutrition:      parsed.Record,
		Ingredients:    parsed.Ingredients,
		Classified:     classified,
		Assessment:     assessment,
		OverallScore:   overall,
		Recommendation: p.engine.Recommend(overall),
		Claims:         parsed.Claims,
		Warnings:       withPartialWarning(parsed.Warnings, parsed.Record),
	}

	logger.WithFields(logrus.Fields{
		"analysis_id":    result.ID,
		"tier":           string(result.Provenance.Tier),
		"overall_score":  result.OverallScore,
		"recommendation": string(result.Recommendation),
		"elapsed_ms":     time.Since(start).Milliseconds(),
	}).Info("Analysis completed")

	return result, nil
}

func resolveProductName(raw *extract.RawExtraction, requested string) string {
	if raw.Hint != nil && raw.Hint.ProductName != "" {
		return raw.Hint.ProductName
	}
	return requested
}

// withPartialWarning appends a summary warning when panel fields stayed
// unknown, so clients can tell a true zero from a failed read.
func withPartialWarning(warnings []string, rec *nutrition.Record) []string {
	unknown := rec.UnknownFields()
	if len(unknown) == 0 {
		return warnings
	}
	names := make([]string, len(unknown))
	for i, f := range unknown {
		names[i] = string(f)
	}
	return append(warnings, fmt.Sprintf("partial parse: unrecognized fields: %s",
		strings.Join(names, ", ")))
}
