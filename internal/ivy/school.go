/*
   Copyright (C) 2023 eLife Sciences

   This program is free software: you can redistribute it and/or modify
   it under the terms of the GNU Affero General Public License as
   published by the Free Software Foundation, either version 3 of the
   License, or (at your option) any later version.

   This program is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
   GNU Affero General Public License for more details.

   You should have received a copy of the GNU Affero General Public License
   along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Package ivy holds the fixed set of institutions charted by ivy-charts
// and the mapping from free-text CSV institution names onto them.
package ivy

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type SchoolKey = string

// DefaultEnrolled is the class size assumed for a school with no configured estimate.
const DefaultEnrolled = 1500

// School is one charted institution.
//
// Enrolled is an estimated freshman class size. The source data does not carry
// enrollment counts, so anything derived from it (admitted counts) is an approximation.
type School struct {
	Key      SchoolKey `yaml:"key" json:"key"`
	Short    string    `yaml:"short" json:"short"`
	Color    string    `yaml:"color" json:"color"`
	Sources  []string  `yaml:"sources" json:"sources"`
	Enrolled int       `yaml:"enrolled" json:"enrolled"`
}

// Table is an ordered list of schools. Order is significant: every aggregate and
// every chart lays schools out in table order.
type Table struct {
	schools []School
	index   map[SchoolKey]int
}

// EnrolledIsEstimate is always true; enrolled counts are configuration, not data.
const EnrolledIsEstimate = true

func NewTable(schools []School) (*Table, error) {
	t := &Table{index: map[SchoolKey]int{}}
	for _, s := range schools {
		if s.Key == "" {
			return nil, fmt.Errorf("school with empty key")
		}
		if _, present := t.index[s.Key]; present {
			return nil, fmt.Errorf("duplicate school key: %s", s.Key)
		}
		if len(s.Sources) == 0 {
			s.Sources = []string{s.Key}
		}
		t.index[s.Key] = len(t.schools)
		t.schools = append(t.schools, s)
	}
	return t, nil
}

// Resolve maps a CSV `Institution` value onto a school key.
// Input is trimmed, then compared exactly (case-sensitive) against each school's
// sources in table order; the first match wins.
func (t *Table) Resolve(institution string) (SchoolKey, bool) {
	inst := strings.TrimSpace(institution)
	if inst == "" {
		return "", false
	}
	for _, s := range t.schools {
		for _, src := range s.Sources {
			if inst == src {
				return s.Key, true
			}
		}
	}
	return "", false
}

func (t *Table) Keys() []SchoolKey {
	keys := make([]SchoolKey, len(t.schools))
	for i, s := range t.schools {
		keys[i] = s.Key
	}
	return keys
}

// Schools returns a copy of the table's schools in order.
func (t *Table) Schools() []School {
	return append([]School(nil), t.schools...)
}

func (t *Table) Has(key SchoolKey) bool {
	_, present := t.index[key]
	return present
}

func (t *Table) Get(key SchoolKey) (School, bool) {
	i, present := t.index[key]
	if !present {
		return School{}, false
	}
	return t.schools[i], true
}

// Enrolled returns the configured class-size estimate for `key`.
func (t *Table) Enrolled(key SchoolKey) int {
	s, ok := t.Get(key)
	if !ok || s.Enrolled <= 0 {
		return DefaultEnrolled
	}
	return s.Enrolled
}

//go:embed schools.yaml
var defaultSchools []byte

// Default returns the eight schools with the CSV names, colors and class-size
// estimates found in the published dataset.
func Default() *Table {
	var doc struct {
		Schools []School `yaml:"schools"`
	}
	if err := yaml.Unmarshal(defaultSchools, &doc); err != nil {
		panic(fmt.Sprintf("parsing embedded schools.yaml: %v", err))
	}
	t, err := NewTable(doc.Schools)
	if err != nil {
		panic(fmt.Sprintf("embedded schools.yaml: %v", err))
	}
	return t
}
