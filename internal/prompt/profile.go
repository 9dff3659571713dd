// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package prompt

import (
	"embed"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"askdata/cli/internal/dataset"
)

//go:embed profiles/*.yaml
var builtinFS embed.FS

// Profile is a deployment-specific rule set for one kind of dataset: column
// vocabulary, cleaning rules and the framing of explanations.
type Profile struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Columns     []string     `yaml:"columns"`
	Required    []string     `yaml:"required"`
	NumericText []string     `yaml:"numeric_text"`
	Dates       []DateColumn `yaml:"dates"`
	Synonyms    []Synonym    `yaml:"synonyms"`
	Rules       []string     `yaml:"rules"`
	Framing     Framing      `yaml:"framing"`
	// Origin is the file the profile was read from.
	Origin string `yaml:"-"`
}

// ParseProfile decodes a YAML profile. Unknown fields are rejected.
func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, fmt.Errorf("invalid profile: missing name")
	}
	for _, s := range p.Synonyms {
		if s.Column == "" || len(s.Terms) == 0 {
			return nil, fmt.Errorf("profile %s: synonym entries need a column and terms", p.Name)
		}
	}
	return &p, nil
}

// LoadProfiles returns the built-in profiles merged with every *.yaml file
// in dir; a file wins over a built-in profile of the same name. A missing
// dir is not an error.
func LoadProfiles(dir string) (map[string]*Profile, error) {
	out := make(map[string]*Profile)

	entries, err := builtinFS.ReadDir("profiles")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		name := path.Join("profiles", e.Name())
		data, err := builtinFS.ReadFile(name)
		if err != nil {
			return nil, err
		}
		p, err := ParseProfile(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		p.Origin = "built-in"
		out[p.Name] = p
	}

	if dir == "" {
		return out, nil
	}
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, err
	}
	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(f.Name()))
		if f.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		full := filepath.Join(dir, f.Name())
		data, err := os.ReadFile(full)
		if err != nil {
			return nil, err
		}
		p, err := ParseProfile(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", full, err)
		}
		p.Origin = full
		out[p.Name] = p
	}
	return out, nil
}

// ProfileNames returns the profile names sorted.
func ProfileNames(profiles map[string]*Profile) []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Descriptor builds the prompt descriptor for ds. Columns come from the
// dataset when one is given, and rules naming absent columns are dropped.
func (p *Profile) Descriptor(ds *dataset.Dataset) Descriptor {
	d := Descriptor{
		Dataset:  p.Name,
		Columns:  p.Columns,
		Required: p.Required,
		Rules:    p.Rules,
		Framing:  p.Framing,
	}
	has := func(string) bool { return true }
	if ds != nil {
		d.Dataset = ds.Name()
		d.Columns = ds.ColumnNames()
		has = func(c string) bool { _, ok := ds.Column(c); return ok }
	}
	for _, c := range p.NumericText {
		if has(c) {
			d.NumericText = append(d.NumericText, c)
		}
	}
	for _, dc := range p.Dates {
		if has(dc.Column) {
			d.Dates = append(d.Dates, dc)
		}
	}
	for _, s := range p.Synonyms {
		if has(s.Column) {
			d.Synonyms = append(d.Synonyms, s)
		}
	}
	return d
}

// GenericDescriptor derives a descriptor from the inferred column roles of
// a dataset that has no profile.
func GenericDescriptor(ds *dataset.Dataset) Descriptor {
	d := Descriptor{
		Dataset: ds.Name(),
		Columns: ds.ColumnNames(),
		Framing: Framing{
			Subject:        "record",
			ChartAudience:  "You are a data analyst explaining a chart to a reader without a technical background.",
			ValueAudience:  "You are a data analyst explaining a computed result to a reader without a technical background.",
			ChartFocus:     []string{"The main patterns and trends shown.", "Any significant peaks, drops or outliers.", "Key observations and what they could mean in practice."},
			SubjectProfile: []string{"The most common values of the main categories", "Typical ranges of the numeric measures"},
		},
	}
	for _, c := range ds.Columns() {
		switch {
		case c.Role == dataset.RoleDate:
			d.Dates = append(d.Dates, DateColumn{Column: c.Name, Layout: c.DateLayout})
		case c.Role == dataset.RoleNumeric:
			d.NumericText = append(d.NumericText, c.Name)
		}
	}
	return d
}
