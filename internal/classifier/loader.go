package classifier

import (
	"errors"
	"fmt"
	"os"

	"github.com/timmy/docclass/internal/domain"
	"gopkg.in/yaml.v3"
)

// ErrInvalidAccessLevel is returned when a rules file names an unknown access level.
var ErrInvalidAccessLevel = errors.New("invalid access level")

// RulesFile is the YAML layout of a rules file. Omitted pattern lists keep
// the built-in defaults.
type RulesFile struct {
	Rules                []RuleSpec `yaml:"rules"`
	CommunityPatterns    []string   `yaml:"community_patterns"`
	OwnerAccountPatterns []string   `yaml:"owner_account_patterns"`
}

// RuleSpec is one rule as written in a rules file.
type RuleSpec struct {
	Category    string        `yaml:"category"`
	AccessLevel string        `yaml:"access_level"`
	Path        []PatternSpec `yaml:"path"`
	Name        []PatternSpec `yaml:"name"`
}

// PatternSpec is either a bare expression or a {pattern, unless} mapping.
type PatternSpec struct {
	Pattern string `yaml:"pattern"`
	Unless  string `yaml:"unless"`
}

// UnmarshalYAML accepts a scalar expression as shorthand for {pattern: expr}.
func (p *PatternSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		p.Pattern = value.Value
		return nil
	}
	type raw PatternSpec
	return value.Decode((*raw)(p))
}

// Load builds a Classifier from a rules file, or the built-in tables when
// path is empty.
// Parameters:
//   - path: YAML rules file path, or "".
// Returns:
//   - *Classifier: classifier over the loaded rules.
//   - error: non-nil if the file cannot be read or holds an invalid rule.
func Load(path string) (*Classifier, error) {
	if path == "" {
		return NewDefault(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return Parse(data)
}

// Parse builds a Classifier from rules file contents.
func Parse(data []byte) (*Classifier, error) {
	var file RulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	rules := DefaultRules()
	if len(file.Rules) > 0 {
		rules = make([]Rule, 0, len(file.Rules))
		for i, spec := range file.Rules {
			rule, err := spec.build()
			if err != nil {
				return nil, fmt.Errorf("rule %d (%s): %w", i, spec.Category, err)
			}
			rules = append(rules, rule)
		}
	}

	communityPatterns := DefaultCommunityPatterns
	if len(file.CommunityPatterns) > 0 {
		communityPatterns = file.CommunityPatterns
	}
	ownerPatterns := DefaultOwnerAccountPatterns
	if len(file.OwnerAccountPatterns) > 0 {
		ownerPatterns = file.OwnerAccountPatterns
	}

	extractors, err := NewExtractors(communityPatterns, ownerPatterns)
	if err != nil {
		return nil, err
	}

	return New(NewEngine(rules), extractors), nil
}

func (s RuleSpec) build() (Rule, error) {
	if s.Category == "" {
		return Rule{}, errors.New("category is required")
	}
	level, err := domain.ParseAccessLevel(s.AccessLevel)
	if err != nil {
		return Rule{}, fmt.Errorf("%w: %v", ErrInvalidAccessLevel, err)
	}
	if len(s.Path) == 0 && len(s.Name) == 0 {
		return Rule{}, errors.New("at least one path or name pattern is required")
	}

	pathPatterns, err := compileSpecs(s.Path)
	if err != nil {
		return Rule{}, err
	}
	namePatterns, err := compileSpecs(s.Name)
	if err != nil {
		return Rule{}, err
	}

	return Rule{
		Category:     s.Category,
		AccessLevel:  level,
		PathPatterns: pathPatterns,
		NamePatterns: namePatterns,
	}, nil
}

func compileSpecs(specs []PatternSpec) ([]Pattern, error) {
	patterns := make([]Pattern, 0, len(specs))
	for _, spec := range specs {
		if spec.Pattern == "" {
			return nil, fmt.Errorf("%w: empty expression", ErrInvalidPattern)
		}
		p, err := NewPattern(spec.Pattern, spec.Unless)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}
