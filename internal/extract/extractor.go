package extract

import (
	"context"
	"fmt"
)

// Result is what the text-extraction collaborator returns for one image.
type Result struct {
	Text             string
	TokenConfidences []float64
}

// Extractor is the text-extraction capability consumed by the pipeline.
// Implementations live outside this module (OCR engine, vision model).
type Extractor interface {
	Extract(ctx context.Context, image []byte) (Result, error)
}

// ExtractionError indicates an upstream extraction failure. It is
// recovered locally by falling back to alternate-input guidance and is
// never surfaced raw to the user.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed: %v", e.Err)
	}
	return "extraction failed"
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// MockExtractor is a deterministic Extractor for tests.
type MockExtractor struct {
	Results []Result
	Errs    []error
	Calls   int
}

func (m *MockExtractor) Extract(_ context.Context, _ []byte) (Result, error) {
	i := m.Calls
	m.Calls++
	if i < len(m.Errs) && m.Errs[i] != nil {
		return Result{}, &ExtractionError{Err: m.Errs[i]}
	}
	if i < len(m.Results) {
		return m.Results[i], nil
	}
	return Result{}, &ExtractionError{Err: fmt.Errorf("no canned result")}
}
