package categorize

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"pennie/internal/core"
)

type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadTable reads merchant rules from YAML:
//
//	rules:
//	  - merchant: "BLUE BOTTLE"
//	    category: "Food & Dining"
//
// Sequence order is kept. Category names are matched case-insensitively;
// an unknown category fails the whole file.
func LoadTable(r io.Reader) ([]Rule, error) {
	var f rulesFile
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode merchant rules: %w", err)
	}
	rules := make([]Rule, 0, len(f.Rules))
	for i, rule := range f.Rules {
		c, ok := core.ParseCategory(string(rule.Category))
		if !ok {
			return nil, fmt.Errorf("rule %d (%q): %w: %q", i+1, rule.Key, core.ErrUnknownCategory, rule.Category)
		}
		rules = append(rules, Rule{Key: rule.Key, Category: c})
	}
	return rules, nil
}

// LoadFile extends the default matcher with rules from path. An empty path
// returns the default matcher.
func LoadFile(path string) (*Matcher, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open merchant rules: %w", err)
	}
	defer f.Close()

	rules, err := LoadTable(f)
	if err != nil {
		return nil, err
	}
	return Default().Extend(rules), nil
}
