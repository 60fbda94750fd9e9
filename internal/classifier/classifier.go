package classifier

import (
	"time"

	"github.com/timmy/docclass/internal/domain"
)

// Classifier combines the rule engine with the metadata extractors.
// It performs no I/O and holds no mutable state.
type Classifier struct {
	engine     *Engine
	extractors *Extractors
}

// New creates a Classifier from an engine and extractors.
func New(engine *Engine, extractors *Extractors) *Classifier {
	return &Classifier{engine: engine, extractors: extractors}
}

// NewDefault creates a Classifier over the built-in rules and patterns.
func NewDefault() *Classifier {
	return New(NewDefaultEngine(), NewDefaultExtractors())
}

// Engine returns the underlying rule engine.
func (c *Classifier) Engine() *Engine {
	return c.engine
}

// Classify computes the classification of doc.
//
// The community name falls back to the value already stored on doc when the
// path yields none. The owner account id is only extracted for owner_
// categories.
// Parameters:
//   - doc: index record to classify.
//   - at: classification timestamp recorded on the result.
// Returns:
//   - domain.ClassificationResult: computed classification.
func (c *Classifier) Classify(doc domain.Document, at time.Time) domain.ClassificationResult {
	category, level := c.engine.Classify(doc.Path, doc.Name)

	result := domain.ClassificationResult{
		Category:     category,
		AccessLevel:  level,
		ClassifiedAt: at,
	}

	if community, ok := c.extractors.Community(doc.Path); ok {
		result.CommunityName = community
	} else {
		result.CommunityName = doc.CommunityName
	}

	if domain.IsOwnerCategory(category) {
		if account, ok := c.extractors.OwnerAccount(doc.Name, doc.Path); ok {
			result.OwnerAccountID = account
		}
	}

	return result
}
