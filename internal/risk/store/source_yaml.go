package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Rafadormi/105-dirvigisan-perobal/internal/risk"
)

type yamlCatalogue struct {
	Rules []yamlRule `yaml:"rules"`
}

// yamlRule keeps tiers as strings so unaccented spellings in hand-edited
// files parse through risk.ParseRiskLevel.
type yamlRule struct {
	Code        string `yaml:"cnae"`
	Description string `yaml:"description"`
	Risk        string `yaml:"risk"`
	Competence  string `yaml:"competence_porte1"`
	RequiresPba bool   `yaml:"requires_pba"`
	Question    string `yaml:"question"`
	RiskIfYes   string `yaml:"risk_if_yes"`
	RiskIfNo    string `yaml:"risk_if_no"`
}

// YAMLSource reads the seed rule catalogue from a YAML file.
type YAMLSource struct {
	path string
}

func NewYAMLSource(path string) *YAMLSource {
	return &YAMLSource{path: path}
}

func (s *YAMLSource) LoadRules(_ context.Context) ([]risk.Rule, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read rule catalogue %s: %w", s.path, err)
	}
	rules, err := DecodeYAML(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return rules, nil
}

// DecodeYAML parses a catalogue document. Every rule must validate; the
// first invalid entry fails the whole document with its position.
func DecodeYAML(r io.Reader) ([]risk.Rule, error) {
	var doc yamlCatalogue
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyCatalogue
		}
		return nil, fmt.Errorf("decode rule catalogue: %w", err)
	}
	if len(doc.Rules) == 0 {
		return nil, ErrEmptyCatalogue
	}

	rules := make([]risk.Rule, 0, len(doc.Rules))
	for i, yr := range doc.Rules {
		rule, err := yr.toRule()
		if err != nil {
			return nil, fmt.Errorf("rule %d (%q): %w", i, yr.Code, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func (y yamlRule) toRule() (risk.Rule, error) {
	tier, err := risk.ParseRiskLevel(y.Risk)
	if err != nil {
		return risk.Rule{}, err
	}
	competence, err := risk.ParseCompetence(y.Competence)
	if err != nil {
		return risk.Rule{}, err
	}
	rule := risk.Rule{
		Code:        y.Code,
		Description: y.Description,
		Risk:        tier,
		Competence:  competence,
		RequiresPba: y.RequiresPba,
		Question:    y.Question,
	}
	if y.RiskIfYes != "" {
		if rule.RiskIfYes, err = risk.ParseRiskLevel(y.RiskIfYes); err != nil {
			return risk.Rule{}, err
		}
	}
	if y.RiskIfNo != "" {
		if rule.RiskIfNo, err = risk.ParseRiskLevel(y.RiskIfNo); err != nil {
			return risk.Rule{}, err
		}
	}
	rule = rule.Normalize()
	if err := rule.Validate(); err != nil {
		return risk.Rule{}, err
	}
	return rule, nil
}
