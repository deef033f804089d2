// Package inference decides the semantic type of untyped table columns.
//
// A column is sampled (Draw), then the sample is run through an ordered
// chain of heuristics; the first heuristic that matches decides the type.
// The resulting Schema is computed once per run and is read-only afterwards.
package inference

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/vincentarsontaneli/data-processor-app/internal/dataset"
)

// ErrInvalidOverride is returned when a type override names an unknown
// column or a target the inferred type cannot be converted to.
var ErrInvalidOverride = errors.New("invalid type override")

// Classification is the type chosen for a column and the evidence for it.
type Classification struct {
	Type     SemanticType `json:"type"`
	Evidence Evidence     `json:"evidence"`
	// Inferred is the type the chain chose before any override.
	Inferred SemanticType `json:"inferred"`
}

// Classifier runs a heuristic chain over column samples.
type Classifier struct {
	thresholds Thresholds
	chain      []Heuristic
}

// NewClassifier creates a classifier with the default chain.
func NewClassifier(th Thresholds) *Classifier {
	return &Classifier{thresholds: th, chain: DefaultChain()}
}

// NewClassifierWithChain creates a classifier with a custom chain. A chain
// with no matching heuristic classifies the column as Unknown.
func NewClassifierWithChain(th Thresholds, chain []Heuristic) *Classifier {
	return &Classifier{thresholds: th, chain: chain}
}

// Thresholds returns the classifier's thresholds.
func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}

// ClassifyColumn samples col and classifies it.
func (c *Classifier) ClassifyColumn(col *dataset.Column) Classification {
	return c.ClassifySample(Draw(col, c.thresholds.SampleSize, c.thresholds.Seed))
}

// ClassifySample runs the chain over an already drawn sample.
func (c *Classifier) ClassifySample(s Sample) Classification {
	if s.Population == 0 || s.Len() == 0 {
		return Classification{
			Type:     Unknown,
			Inferred: Unknown,
			Evidence: Evidence{Heuristic: HeuristicAllMissing},
		}
	}

	for _, h := range c.chain {
		t, ev, ok := h.Evaluate(s, c.thresholds)
		if !ok {
			continue
		}
		if ev.Heuristic == "" {
			ev.Heuristic = h.Name
		}
		return Classification{Type: t, Inferred: t, Evidence: ev}
	}
	return Classification{
		Type:     Unknown,
		Inferred: Unknown,
		Evidence: Evidence{Heuristic: HeuristicFallback, Considered: s.Len()},
	}
}

// Classify builds the schema for every column of t.
func (c *Classifier) Classify(t *dataset.Table) Schema {
	fields := make([]Field, len(t.Columns))
	for i, col := range t.Columns {
		fields[i] = Field{Name: col.Name, Classification: c.ClassifyColumn(col)}
	}
	return Schema{Fields: fields}
}

// Field is one column of a schema.
type Field struct {
	Name string `json:"name"`
	Classification
}

// Schema is the ordered per-column classification of a table.
type Schema struct {
	Fields []Field `json:"fields"`
}

// UnknownSchema classifies every named column as Unknown.
func UnknownSchema(names []string) Schema {
	fields := make([]Field, len(names))
	for i, name := range names {
		fields[i] = Field{
			Name: name,
			Classification: Classification{
				Type:     Unknown,
				Inferred: Unknown,
				Evidence: Evidence{Heuristic: HeuristicAllMissing},
			},
		}
	}
	return Schema{Fields: fields}
}

// Lookup returns the field with the given name.
func (s Schema) Lookup(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Types returns the semantic type of every column, keyed by name.
func (s Schema) Types() map[string]SemanticType {
	out := make(map[string]SemanticType, len(s.Fields))
	for _, f := range s.Fields {
		out[f.Name] = f.Type
	}
	return out
}

// WithOverrides returns a copy of s with the given columns pinned to the
// requested types. Every override is checked against CanConvert; all
// failures are reported together and wrap ErrInvalidOverride.
func (s Schema) WithOverrides(overrides map[string]SemanticType) (Schema, error) {
	out := Schema{Fields: append([]Field(nil), s.Fields...)}
	if len(overrides) == 0 {
		return out, nil
	}

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	var problems []string
	for _, name := range names {
		target := overrides[name]
		idx := -1
		for i, f := range out.Fields {
			if f.Name == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			problems = append(problems, fmt.Sprintf("column %q not found", name))
			continue
		}
		f := out.Fields[idx]
		if !CanConvert(f.Inferred, target) {
			problems = append(problems, fmt.Sprintf("column %q: cannot convert %s to %s", name, f.Inferred, target))
			continue
		}
		f.Type = target
		f.Evidence = Evidence{Heuristic: HeuristicOverride}
		out.Fields[idx] = f
	}

	if len(problems) > 0 {
		return Schema{}, fmt.Errorf("%w: %s", ErrInvalidOverride, strings.Join(problems, "; "))
	}
	return out, nil
}

// ParseOverrides converts a column-to-type-name map into typed overrides.
func ParseOverrides(raw map[string]string) (map[string]SemanticType, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]SemanticType, len(raw))
	for name, typ := range raw {
		t, err := ParseSemanticType(typ)
		if err != nil {
			return nil, fmt.Errorf("%w: column %q: %v", ErrInvalidOverride, name, err)
		}
		out[name] = t
	}
	return out, nil
}
