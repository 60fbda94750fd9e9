package classifier

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultCommunityPatterns locate the community folder in a storage path.
// Each pattern captures the community name in group 1.
var DefaultCommunityPatterns = []string{
	`/(?:Round Rock|North Austin|South Austin) Office/([^/]+)/`,
	`/sites/AssociationDocs/([^/]+)/`,
}

// DefaultOwnerAccountPatterns locate an owner account id in a filename or path.
var DefaultOwnerAccountPatterns = []string{
	`^(R\d+L\d+)`,
	`Account[:\s#]*(\d+)`,
	`Acct[:\s#]*(\d+)`,
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Extractor tries an ordered list of capture patterns; the first pattern that
// produces group 1 wins.
type Extractor struct {
	patterns  []*regexp.Regexp
	normalize func(string) string
}

// NewExtractor compiles patterns case-insensitively. Every pattern must
// define at least one capture group.
func NewExtractor(patterns []string, normalize func(string) string) (*Extractor, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, expr := range patterns {
		re, err := regexp.Compile("(?i)" + expr)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, expr, err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("%w: %q: no capture group", ErrInvalidPattern, expr)
		}
		compiled = append(compiled, re)
	}
	return &Extractor{patterns: compiled, normalize: normalize}, nil
}

// Extract returns the first captured value, or false when nothing matched.
func (e *Extractor) Extract(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	for _, re := range e.patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		value := m[1]
		if e.normalize != nil {
			value = e.normalize(value)
		}
		if value == "" {
			continue
		}
		return value, true
	}
	return "", false
}

// NormalizeCommunity decodes encoded spaces, collapses whitespace, and trims.
func NormalizeCommunity(s string) string {
	s = strings.ReplaceAll(s, "%20", " ")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Extractors bundles the community and owner-account extractors.
type Extractors struct {
	community *Extractor
	owner     *Extractor
}

// NewExtractors compiles the given pattern lists.
func NewExtractors(communityPatterns, ownerPatterns []string) (*Extractors, error) {
	community, err := NewExtractor(communityPatterns, NormalizeCommunity)
	if err != nil {
		return nil, err
	}
	owner, err := NewExtractor(ownerPatterns, nil)
	if err != nil {
		return nil, err
	}
	return &Extractors{community: community, owner: owner}, nil
}

// NewDefaultExtractors compiles the built-in pattern lists.
func NewDefaultExtractors() *Extractors {
	x, err := NewExtractors(DefaultCommunityPatterns, DefaultOwnerAccountPatterns)
	if err != nil {
		panic(err)
	}
	return x
}

// Community extracts the community name from a storage path.
func (x *Extractors) Community(path string) (string, bool) {
	return x.community.Extract(path)
}

// OwnerAccount extracts an owner account id from the filename, falling back
// to the path.
func (x *Extractors) OwnerAccount(name, path string) (string, bool) {
	text := name
	if path != "" {
		text = name + " " + path
	}
	return x.owner.Extract(text)
}
