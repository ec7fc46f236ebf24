// Package trust provides the default author-trust model. It is a reference
// stub: a deterministic hash of the author identity mapped into [0.5, 1.0].
// Hosts replace it with a behavioral model without touching the pipeline.
package trust

import (
	"hash/fnv"

	"github.com/elum-utils/gatekeeper/models"
)

const neutralScore = 0.5

// HashEstimator derives a stable per-author score from an FNV-1a hash.
type HashEstimator struct{}

// NewHashEstimator creates the default estimator.
func NewHashEstimator() *HashEstimator {
	return &HashEstimator{}
}

// GetTrustScore maps the author identity into [0.5, 1.0]. Unknown authors get
// a stable in-range value, not a special constant.
func (HashEstimator) GetTrustScore(author models.AuthorRef) float64 {
	h := fnv.New64a()
	if _, err := h.Write([]byte(author.String())); err != nil {
		return neutralScore
	}
	// 501 buckets spread evenly across [0.5, 1.0].
	return neutralScore + float64(h.Sum64()%501)/1000.0
}
