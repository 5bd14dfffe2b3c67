package tmx

import (
	"fmt"
	"strconv"

	"github.com/Faultbox/tilemap/pkg/math"
)

// PropertyType is the declared type of a custom property.
type PropertyType string

// Custom property types. An empty type attribute means string.
const (
	PropertyString PropertyType = "string"
	PropertyInt    PropertyType = "int"
	PropertyFloat  PropertyType = "float"
	PropertyBool   PropertyType = "bool"
	PropertyColor  PropertyType = "color"
	PropertyFile   PropertyType = "file"
	PropertyObject PropertyType = "object"
	PropertyClass  PropertyType = "class"
)

// Property is a typed custom property. Class properties carry their members
// in Properties and have an empty Value.
type Property struct {
	Name         string
	Type         PropertyType
	PropertyType string // custom type name for class and enum properties
	Value        string
	Properties   Properties
}

// Int returns the value as an integer.
func (p Property) Int() (int, error) {
	v, err := strconv.Atoi(p.Value)
	if err != nil {
		return 0, fmt.Errorf("property %q: %w", p.Name, err)
	}
	return v, nil
}

// Float returns the value as a float.
func (p Property) Float() (float64, error) {
	v, err := strconv.ParseFloat(p.Value, 64)
	if err != nil {
		return 0, fmt.Errorf("property %q: %w", p.Name, err)
	}
	return v, nil
}

// Bool returns the value as a bool.
func (p Property) Bool() (bool, error) {
	v, err := strconv.ParseBool(p.Value)
	if err != nil {
		return false, fmt.Errorf("property %q: %w", p.Name, err)
	}
	return v, nil
}

// Color returns the value as a color. An empty color is transparent black.
func (p Property) Color() (math.Color, error) {
	if p.Value == "" {
		return math.Color{}, nil
	}
	c, err := math.ParseColor(p.Value)
	if err != nil {
		return math.Color{}, fmt.Errorf("property %q: %w", p.Name, err)
	}
	return c, nil
}

// Properties is an ordered property list.
type Properties []Property

// Get returns the named property.
func (ps Properties) Get(name string) (Property, bool) {
	for _, p := range ps {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// GetString returns the named value or "".
func (ps Properties) GetString(name string) string {
	p, _ := ps.Get(name)
	return p.Value
}

// GetInt returns the named value as an int, or def when missing or invalid.
func (ps Properties) GetInt(name string, def int) int {
	p, ok := ps.Get(name)
	if !ok {
		return def
	}
	v, err := p.Int()
	if err != nil {
		return def
	}
	return v
}

// GetFloat returns the named value as a float, or def when missing or invalid.
func (ps Properties) GetFloat(name string, def float64) float64 {
	p, ok := ps.Get(name)
	if !ok {
		return def
	}
	v, err := p.Float()
	if err != nil {
		return def
	}
	return v
}

// GetBool returns the named value as a bool, or def when missing or invalid.
func (ps Properties) GetBool(name string, def bool) bool {
	p, ok := ps.Get(name)
	if !ok {
		return def
	}
	v, err := p.Bool()
	if err != nil {
		return def
	}
	return v
}

// Merge returns base overlaid with ps: properties in ps replace those with
// the same name in base, class members merge recursively, and new names are
// appended in order.
func (ps Properties) Merge(base Properties) Properties {
	out := append(Properties(nil), base...)
	for _, p := range ps {
		replaced := false
		for i := range out {
			if out[i].Name != p.Name {
				continue
			}
			if p.Type == PropertyClass && out[i].Type == PropertyClass {
				p.Properties = p.Properties.Merge(out[i].Properties)
			}
			out[i] = p
			replaced = true
			break
		}
		if !replaced {
			out = append(out, p)
		}
	}
	return out
}
