// Package family holds the person records a family tree is drawn from.
//
// Records follow the family-chart data format: an id, a set of relation
// references and a free-form data block carrying the display fields.
package family

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ID identifies a person. Datasets may encode ids as JSON strings or
// numbers; both decode to the same ID.
type ID string

// UnmarshalJSON accepts both `"12"` and `12`.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("family: id must be a string or number: %s", b)
	}
	*id = ID(n.String())
	return nil
}

// UnmarshalYAML accepts any scalar.
func (id *ID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("family: id must be a scalar (line %d)", node.Line)
	}
	*id = ID(node.Value)
	return nil
}

func (id ID) String() string { return string(id) }

// Rels references the relatives of a person by id.
type Rels struct {
	Father   ID   `json:"father,omitempty" yaml:"father,omitempty"`
	Mother   ID   `json:"mother,omitempty" yaml:"mother,omitempty"`
	Spouses  []ID `json:"spouses,omitempty" yaml:"spouses,omitempty"`
	Children []ID `json:"children,omitempty" yaml:"children,omitempty"`
}

// Data carries the display fields of a card.
type Data struct {
	FirstName string `json:"fn" yaml:"fn"`
	LastName  string `json:"ln" yaml:"ln"`
	Birthday  string `json:"birthday,omitempty" yaml:"birthday,omitempty"`
	Avatar    string `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	Gender    string `json:"gender,omitempty" yaml:"gender,omitempty"`
}

// Person is a single record of the dataset.
type Person struct {
	ID   ID   `json:"id" yaml:"id"`
	Rels Rels `json:"rels" yaml:"rels"`
	Data Data `json:"data" yaml:"data"`
}

// Label is the search label: first name, a space, last name. Missing parts
// leave the space in place, so "Jean " still finds a person without a last
// name.
func (p Person) Label() string {
	return p.Data.FirstName + " " + p.Data.LastName
}

// DisplayName is the label without surrounding spaces.
func (p Person) DisplayName() string {
	return strings.TrimSpace(p.Label())
}

// equal reports whether two records carry the same content.
func (p Person) equal(o Person) bool {
	if p.ID != o.ID || p.Data != o.Data {
		return false
	}
	if p.Rels.Father != o.Rels.Father || p.Rels.Mother != o.Rels.Mother {
		return false
	}
	return idsEqual(p.Rels.Spouses, o.Rels.Spouses) && idsEqual(p.Rels.Children, o.Rels.Children)
}

func idsEqual(a, b []ID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
