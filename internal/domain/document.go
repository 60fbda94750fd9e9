package domain

import (
	"strings"
	"time"
)

const (
	// CategoryUncategorized is assigned when no rule matches.
	CategoryUncategorized = "uncategorized"

	// OwnerCategoryPrefix marks owner-scoped categories such as owner_statement.
	OwnerCategoryPrefix = "owner_"
)

// Document is an index record as seen by the classification pipeline.
// Absent index fields are represented by empty strings.
type Document struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Path          string      `json:"path"`
	Category      string      `json:"category,omitempty"`
	AccessLevel   AccessLevel `json:"access_level,omitempty"`
	CommunityName string      `json:"community_name,omitempty"`
}

// IsClassified reports whether the document already carries a category.
func (d Document) IsClassified() bool {
	return d.Category != ""
}

// ClassificationResult is the derived classification of one document.
type ClassificationResult struct {
	Category       string      `json:"category"`
	AccessLevel    AccessLevel `json:"access_level"`
	CommunityName  string      `json:"community_name,omitempty"`
	OwnerAccountID string      `json:"owner_account_id,omitempty"`
	ClassifiedAt   time.Time   `json:"classified_at"`
}

// IsOwnerScoped reports whether the category carries the owner_ prefix.
func (r ClassificationResult) IsOwnerScoped() bool {
	return IsOwnerCategory(r.Category)
}

// IsOwnerCategory reports whether category carries the owner_ prefix.
func IsOwnerCategory(category string) bool {
	return strings.HasPrefix(category, OwnerCategoryPrefix)
}

// Update builds the merge patch that writes r onto document id.
// Empty community and owner fields are left out of the patch so the
// stored values are never cleared.
func (r ClassificationResult) Update(id string) DocumentUpdate {
	return DocumentUpdate{
		ID:             id,
		Category:       r.Category,
		AccessLevel:    r.AccessLevel,
		CommunityName:  r.CommunityName,
		OwnerAccountID: r.OwnerAccountID,
		ClassifiedAt:   r.ClassifiedAt,
	}
}

// DocumentUpdate is a per-document field patch submitted with merge semantics.
type DocumentUpdate struct {
	ID             string
	Category       string
	AccessLevel    AccessLevel
	CommunityName  string
	OwnerAccountID string
	ClassifiedAt   time.Time
}
