package tokencount

import (
	"strings"
	"unicode"

	"github.com/go-ego/gse"
)

// Estimator produces word-count based token estimates for text. It is only
// used when the LLM provider does not report usage, and for the mock
// responder. The gse segmenter keeps the count reasonable for CJK text,
// where whitespace splitting would report one giant token per sentence.
type Estimator struct {
	segmenter *gse.Segmenter
}

// NewEstimator creates an estimator. If the segmenter fails to initialize
// it degrades to plain whitespace splitting.
func NewEstimator() *Estimator {
	seg, err := gse.New()
	if err != nil {
		return &Estimator{}
	}
	return &Estimator{segmenter: &seg}
}

// Estimate returns the approximate token count of text.
func (e *Estimator) Estimate(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	if e.segmenter != nil {
		words := e.segmenter.Cut(text, true)
		n := 0
		for _, w := range words {
			if strings.TrimFunc(w, unicode.IsSpace) != "" {
				n++
			}
		}
		return n
	}

	return len(strings.Fields(text))
}
