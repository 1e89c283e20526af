package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Markers decides whether a message text belongs to a variant. Any needs one hit,
// All needs every entry; an empty list places no constraint.
type Markers struct {
	Any []string `yaml:"any"`
	All []string `yaml:"all"`
}

// VariantProfile configures detection and price lookup for one notification variant
type VariantProfile struct {
	Markers  Markers  `yaml:"markers"`
	Triggers []string `yaml:"triggers"`
}

// Profile describes the trip being tracked and how its notifications look
type Profile struct {
	TravelMonths []string `yaml:"travel_months"`

	Variants struct {
		ItalianSingle VariantProfile `yaml:"italian_single"`
		EnglishDouble VariantProfile `yaml:"english_double"`
		EnglishSingle VariantProfile `yaml:"english_single"`
	} `yaml:"variants"`
}

// DefaultProfile tracks Zurich <-> Lisbon trips in October
func DefaultProfile() Profile {
	var p Profile
	p.TravelMonths = []string{"Oct"}
	p.Variants.ItalianSingle = VariantProfile{
		Markers:  Markers{Any: []string{"Il prezzo dei tuoi voli", "Da Zurigo a Lisbona"}},
		Triggers: []string{"aumentato", "diminuito", "sceso"},
	}
	p.Variants.EnglishDouble = VariantProfile{
		Markers:  Markers{Any: []string{"Price updates for 2 saved flights"}},
		Triggers: []string{"gone up", "gone down"},
	}
	p.Variants.EnglishSingle = VariantProfile{
		Markers:  Markers{All: []string{"Zurich to Lisbon", "Your", "flights have"}},
		Triggers: []string{"gone up", "gone down"},
	}
	return p
}

// LoadProfile reads a YAML profile on top of the defaults. An empty path yields the defaults.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()
	if path == "" {
		return p, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read profile: %w", err)
	}
	if err := yaml.Unmarshal(b, &p); err != nil {
		return p, fmt.Errorf("parse profile %s: %w", path, err)
	}

	p.normalize()
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// Validate rejects profiles that could never match anything
func (p Profile) Validate() error {
	if len(p.TravelMonths) == 0 {
		return fmt.Errorf("travel_months must not be empty")
	}
	variants := map[string]VariantProfile{
		"italian_single": p.Variants.ItalianSingle,
		"english_double": p.Variants.EnglishDouble,
		"english_single": p.Variants.EnglishSingle,
	}
	for name, v := range variants {
		if len(v.Markers.Any) == 0 && len(v.Markers.All) == 0 {
			return fmt.Errorf("variant %s has no markers", name)
		}
		if len(v.Triggers) == 0 {
			return fmt.Errorf("variant %s has no triggers", name)
		}
	}
	return nil
}

// triggers are compared against lower-cased lines
func (p *Profile) normalize() {
	for _, v := range []*VariantProfile{&p.Variants.ItalianSingle, &p.Variants.EnglishDouble, &p.Variants.EnglishSingle} {
		for i, t := range v.Triggers {
			v.Triggers[i] = strings.ToLower(strings.TrimSpace(t))
		}
	}
}
