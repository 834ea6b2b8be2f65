// Package catalog holds the read-only reference data shipped with the binary:
// registration templates and trivia facts. It is parsed once at startup.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

const DefaultActivity = "Default"

type TemplateGoal struct {
	Name    string  `yaml:"name"    json:"name"`
	Current float64 `yaml:"current" json:"current"`
	Target  float64 `yaml:"target"  json:"target"`
	Level   int     `yaml:"level"   json:"level"`
}

type Template struct {
	ID          string         `yaml:"id"          json:"id"`
	Name        string         `yaml:"name"        json:"name"`
	Description string         `yaml:"description" json:"description"`
	Skills      []TemplateGoal `yaml:"skills"      json:"skills"`
	Financial   []TemplateGoal `yaml:"financial"   json:"financial"`
}

// ActivityFacts groups trivia under one activity name.
type ActivityFacts struct {
	Activity string   `yaml:"activity"`
	Facts    []string `yaml:"facts"`
}

// Catalog is immutable after Load.
type Catalog struct {
	templates []Template
	byID      map[string]*Template
	facts     []ActivityFacts
}

func Load() (*Catalog, error) {
	var templates []Template
	err := decode("data/templates.yaml", &templates)
	if err != nil {
		return nil, err
	}

	var facts []ActivityFacts
	err = decode("data/facts.yaml", &facts)
	if err != nil {
		return nil, err
	}

	return New(templates, facts)
}

// New builds a catalog from already-parsed data. The last fact group must be DefaultActivity.
func New(templates []Template, facts []ActivityFacts) (*Catalog, error) {
	c := &Catalog{
		templates: make([]Template, 0, len(templates)),
		byID:      make(map[string]*Template, len(templates)),
		facts:     facts,
	}

	for _, t := range templates {
		if t.ID == "" {
			return nil, errors.New("catalog: template without id")
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate template %q", t.ID)
		}
		if t.Skills == nil {
			t.Skills = []TemplateGoal{}
		}
		if t.Financial == nil {
			t.Financial = []TemplateGoal{}
		}
		c.templates = append(c.templates, t)
	}
	for i := range c.templates {
		c.byID[c.templates[i].ID] = &c.templates[i]
	}

	if len(facts) == 0 || facts[len(facts)-1].Activity != DefaultActivity {
		return nil, errors.New("catalog: facts must end with the Default activity")
	}
	for _, group := range facts {
		if len(group.Facts) == 0 {
			return nil, fmt.Errorf("catalog: activity %q has no facts", group.Activity)
		}
	}

	return c, nil
}

func decode(name string, out any) error {
	raw, err := dataFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("catalog: read %s: %w", name, err)
	}
	err = yaml.Unmarshal(raw, out)
	if err != nil {
		return fmt.Errorf("catalog: parse %s: %w", name, err)
	}
	return nil
}

// Templates returns a copy in catalog order.
func (c *Catalog) Templates() []Template {
	out := make([]Template, len(c.templates))
	copy(out, c.templates)
	return out
}

func (c *Catalog) Template(id string) (Template, bool) {
	t, ok := c.byID[id]
	if !ok {
		return Template{}, false
	}
	return *t, true
}

// Activity returns the first activity whose name appears in searchTerm,
// compared case-insensitively, or DefaultActivity.
func (c *Catalog) Activity(searchTerm string) string {
	// A Caser is stateful, so each call gets its own.
	fold := cases.Fold()
	term := fold.String(searchTerm)
	for _, group := range c.facts {
		if group.Activity == DefaultActivity {
			continue
		}
		if strings.Contains(term, fold.String(group.Activity)) {
			return group.Activity
		}
	}
	return DefaultActivity
}

func (c *Catalog) Facts(activity string) []string {
	for _, group := range c.facts {
		if group.Activity == activity {
			return append([]string(nil), group.Facts...)
		}
	}
	return nil
}

// RandomFact picks one fact for the activity matched by searchTerm.
func (c *Catalog) RandomFact(searchTerm string) (activity, fact string) {
	activity = c.Activity(searchTerm)
	facts := c.Facts(activity)
	return activity, facts[rand.IntN(len(facts))]
}
