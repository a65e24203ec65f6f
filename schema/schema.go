// Package schema declares the content types handed to the CMS schema
// engine. The declarations are data; the engine interprets them.
package schema

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/foomo/contentserver-slugs/service/vo"
	"github.com/foomo/contentserver-slugs/validation"
)

type Type struct {
	Name    string   `json:"name" yaml:"name"`
	Type    string   `json:"type" yaml:"type"`
	Title   string   `json:"title,omitempty" yaml:"title,omitempty"`
	Options *Options `json:"options,omitempty" yaml:"options,omitempty"`
	Fields  []Field  `json:"fields,omitempty" yaml:"fields,omitempty"`
}

type Field struct {
	Name         string      `json:"name" yaml:"name"`
	Type         string      `json:"type" yaml:"type"`
	Title        string      `json:"title,omitempty" yaml:"title,omitempty"`
	Description  string      `json:"description,omitempty" yaml:"description,omitempty"`
	Rows         int         `json:"rows,omitempty" yaml:"rows,omitempty"`
	InitialValue any         `json:"initialValue,omitempty" yaml:"initialValue,omitempty"`
	Options      *Options    `json:"options,omitempty" yaml:"options,omitempty"`
	Validation   []RuleGroup `json:"validation,omitempty" yaml:"validation,omitempty"`
}

type Options struct {
	Hotspot   bool   `json:"hotspot,omitempty" yaml:"hotspot,omitempty"`     // Enables hotspot cropping for images
	Layout    string `json:"layout,omitempty" yaml:"layout,omitempty"`       // e.g. "checkbox" for booleans
	Source    string `json:"source,omitempty" yaml:"source,omitempty"`       // Field a slug is generated from
	MaxLength int    `json:"maxLength,omitempty" yaml:"maxLength,omitempty"` // Maximum slug length
}

// RuleGroup describes one validation chain of a field.
type RuleGroup struct {
	Severity vo.Severity `json:"severity" yaml:"severity"`
	Required bool        `json:"required,omitempty" yaml:"required,omitempty"`
	Checks   []string    `json:"checks,omitempty" yaml:"checks,omitempty"`
}

func describe(chains []*validation.Chain) []RuleGroup {
	groups := make([]RuleGroup, len(chains))
	for i, chain := range chains {
		groups[i] = RuleGroup{
			Severity: chain.Severity(),
			Required: chain.IsRequired(),
			Checks:   chain.Checks(),
		}
	}
	return groups
}

var Figure = Type{
	Name: "figure",
	Type: "image",
	Options: &Options{
		Hotspot: true,
	},
	Fields: []Field{
		{
			Name:  "caption",
			Type:  "text",
			Title: "Caption",
			Rows:  2,
		},
		{
			Name:  "altText",
			Type:  "string",
			Title: "Alt Text",
		},
		{
			Name:         "outline",
			Type:         "boolean",
			Title:        "Outline",
			Description:  "Give images with white backgrounds a light outline to help them not disappear onto the page at the edges",
			InitialValue: false,
			Options: &Options{
				Layout: "checkbox",
			},
		},
	},
}

// SlugField declares a slug field generated from source and checked by the
// slug validations.
func SlugField(name, source string, opts ...validation.Option) Field {
	return Field{
		Name:  name,
		Type:  vo.SlugType,
		Title: "Slug",
		Options: &Options{
			Source:    source,
			MaxLength: 200,
		},
		Validation: describe(validation.SlugValidations(validation.NewRule(), opts...)),
	}
}

func Post(opts ...validation.Option) Type {
	return Type{
		Name:  "post",
		Type:  "document",
		Title: "Post",
		Fields: []Field{
			{
				Name:  "title",
				Type:  "string",
				Title: "Title",
			},
			SlugField("slug", "title", opts...),
			{
				Name:  "image",
				Type:  Figure.Name,
				Title: "Image",
			},
		},
	}
}

// Types returns every registered schema type.
func Types(opts ...validation.Option) []Type {
	return []Type{Post(opts...), Figure}
}

func Lookup(types []Type, name string) (Type, bool) {
	for _, t := range types {
		if t.Name == name {
			return t, true
		}
	}
	return Type{}, false
}

func MarshalYAML(types []Type) ([]byte, error) {
	out, err := yaml.Marshal(types)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return out, nil
}

func MarshalJSON(types []Type) ([]byte, error) {
	out, err := json.MarshalIndent(types, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return out, nil
}
