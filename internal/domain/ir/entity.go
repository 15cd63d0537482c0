// Package ir contains the typed intermediate representation produced by scene
// extraction. It is independent of both the host document and the target syntax.
package ir

import (
	"encoding/json"
	"fmt"
)

// Kind is the closed set of entity variants.
type Kind int

const (
	// KindRectSprite is a flat colored quad with mutable runtime state.
	KindRectSprite Kind = iota + 1
	// KindTextLabel is a DOM text node with mutable runtime state.
	KindTextLabel
	// KindStrokeGroup is static stroke geometry drawn once at setup.
	KindStrokeGroup
)

// String returns the kind name used in reports and filters.
func (k Kind) String() string {
	switch k {
	case KindRectSprite:
		return "RectSprite"
	case KindTextLabel:
		return "TextLabel"
	case KindStrokeGroup:
		return "StrokeGroup"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// HasState reports whether entities of this kind own a runtime-state slot.
func (k Kind) HasState() bool {
	return k == KindRectSprite || k == KindTextLabel
}

// Transform is a position and scale in target canvas coordinates.
type Transform struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	ScaleX float64 `json:"scale_x" yaml:"scale_x"`
	ScaleY float64 `json:"scale_y" yaml:"scale_y"`
}

// Color is an 8-bit RGB color with floating alpha.
type Color struct {
	R uint8   `json:"r" yaml:"r"`
	G uint8   `json:"g" yaml:"g"`
	B uint8   `json:"b" yaml:"b"`
	A float64 `json:"a" yaml:"a"`
}

// TextLabel is the payload of a KindTextLabel entity.
type TextLabel struct {
	Label           string  `json:"label" yaml:"label"`
	FontSize        float64 `json:"font_size" yaml:"font_size"`
	DOMID           string  `json:"dom_id" yaml:"dom_id"`
	InitiallyHidden bool    `json:"initially_hidden" yaml:"initially_hidden"`
}

// Entity is one extracted scene object.
type Entity struct {
	kind Kind

	Name       string     `json:"name" yaml:"name"`
	SafeName   string     `json:"safe_name" yaml:"safe_name"`
	Transform  Transform  `json:"transform" yaml:"transform"`
	Color      Color      `json:"color" yaml:"color"`
	Text       *TextLabel `json:"text,omitempty" yaml:"text,omitempty"`
	Strokes    *Strokes   `json:"strokes,omitempty" yaml:"strokes,omitempty"`
	Properties []Property `json:"properties,omitempty" yaml:"properties,omitempty"`
	Scripts    []Script   `json:"scripts,omitempty" yaml:"scripts,omitempty"`

	// Slot is the runtime-state table index, or -1 for kinds without state.
	Slot int `json:"slot" yaml:"slot"`
}

// NewEntity creates an entity of the given kind. The kind cannot change afterwards.
func NewEntity(kind Kind, name, safeName string) *Entity {
	return &Entity{kind: kind, Name: name, SafeName: safeName, Slot: -1}
}

// Kind returns the entity variant.
func (e *Entity) Kind() Kind {
	return e.kind
}

// entityFields has Entity's fields without its methods, so the marshalers
// below do not recurse.
type entityFields Entity

type entityView struct {
	Kind         string `json:"kind" yaml:"kind"`
	entityFields `json:",inline" yaml:",inline"`
}

// MarshalJSON adds the kind to the encoded fields.
func (e *Entity) MarshalJSON() ([]byte, error) {
	return json.Marshal(entityView{Kind: e.kind.String(), entityFields: entityFields(*e)})
}

// MarshalYAML adds the kind to the encoded fields.
func (e *Entity) MarshalYAML() (any, error) {
	return entityView{Kind: e.kind.String(), entityFields: entityFields(*e)}, nil
}

// Property looks up a custom property by its source name.
func (e *Entity) Property(name string) (Property, bool) {
	for _, p := range e.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// PropertyType distinguishes numeric from string property values.
type PropertyType int

const (
	// PropertyNumber holds a float value.
	PropertyNumber PropertyType = iota + 1
	// PropertyString holds a string value.
	PropertyString
)

// Property is a user-defined per-entity value.
type Property struct {
	Name   string       `json:"name" yaml:"name"`
	Type   PropertyType `json:"type" yaml:"type"`
	Number float64      `json:"number,omitempty" yaml:"number,omitempty"`
	String string       `json:"string,omitempty" yaml:"string,omitempty"`
}

// NumberProperty creates a numeric property.
func NumberProperty(name string, v float64) Property {
	return Property{Name: name, Type: PropertyNumber, Number: v}
}

// StringProperty creates a string property.
func StringProperty(name, v string) Property {
	return Property{Name: name, Type: PropertyString, String: v}
}

// Script is an opaque behavior fragment attached to a slot.
type Script struct {
	Slot   int    `json:"slot" yaml:"slot"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Source string `json:"source" yaml:"source"`
}
