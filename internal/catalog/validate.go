package catalog

import (
	"fmt"
	"strings"
)

// DiagnosticKind classifies a catalog authoring defect.
type DiagnosticKind string

const (
	DiagAttributeCount   DiagnosticKind = "attribute_count"
	DiagDuplicateAttr    DiagnosticKind = "duplicate_attribute"
	DiagSharedAttributes DiagnosticKind = "shared_attributes"
)

// Diagnostic describes one violated deck-design rule.
type Diagnostic struct {
	Kind       DiagnosticKind `json:"kind"`
	Citizens   []CitizenCode  `json:"citizens"`
	Attributes []Attribute    `json:"attributes,omitempty"`
	Message    string         `json:"message"`
}

// AttributesPerCitizen is the number of tags every citizen card carries.
const AttributesPerCitizen = 4

// Validate checks deck-design rules: every citizen has exactly four distinct
// attributes and no two citizens share more than one. It never fails; the
// result is a list of human-readable diagnostics.
func Validate(cs []Citizen) []Diagnostic {
	var diags []Diagnostic

	for _, c := range cs {
		if len(c.Attributes) != AttributesPerCitizen {
			diags = append(diags, Diagnostic{
				Kind:     DiagAttributeCount,
				Citizens: []CitizenCode{c.Code},
				Message:  fmt.Sprintf("%s has %d attributes, want %d", c.Name, len(c.Attributes), AttributesPerCitizen),
			})
		}
		seen := make(map[Attribute]bool, len(c.Attributes))
		for _, a := range c.Attributes {
			if seen[a] {
				diags = append(diags, Diagnostic{
					Kind:       DiagDuplicateAttr,
					Citizens:   []CitizenCode{c.Code},
					Attributes: []Attribute{a},
					Message:    fmt.Sprintf("%s lists %s more than once", c.Name, a),
				})
			}
			seen[a] = true
		}
	}

	for i := 0; i < len(cs); i++ {
		for j := i + 1; j < len(cs); j++ {
			shared := sharedAttributes(cs[i], cs[j])
			if len(shared) < 2 {
				continue
			}
			names := make([]string, len(shared))
			for k, a := range shared {
				names[k] = a.String()
			}
			diags = append(diags, Diagnostic{
				Kind:       DiagSharedAttributes,
				Citizens:   []CitizenCode{cs[i].Code, cs[j].Code},
				Attributes: shared,
				Message: fmt.Sprintf("%s and %s share %d attributes: %s",
					cs[i].Name, cs[j].Name, len(shared), strings.Join(names, ", ")),
			})
		}
	}
	return diags
}

func sharedAttributes(a, b Citizen) []Attribute {
	var out []Attribute
	seen := make(map[Attribute]bool)
	for _, x := range a.Attributes {
		if seen[x] {
			continue
		}
		seen[x] = true
		if b.Has(x) {
			out = append(out, x)
		}
	}
	return out
}
