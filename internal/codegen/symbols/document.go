package symbols

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// Document is the serialized form of a program model.
type Document struct {
	Types []TypeDoc `yaml:"types" json:"types" toml:"types"`
}

// TypeDoc describes one type definition.
type TypeDoc struct {
	Name         string         `yaml:"name" json:"name" toml:"name"`
	Kind         string         `yaml:"kind" json:"kind" toml:"kind"`
	Static       bool           `yaml:"static" json:"static" toml:"static"`
	Base         string         `yaml:"base" json:"base" toml:"base"`
	Interfaces   []string       `yaml:"interfaces" json:"interfaces" toml:"interfaces"`
	TypeParams   []string       `yaml:"typeParams" json:"typeParams" toml:"typeParams"`
	Attributes   []AttributeDoc `yaml:"attributes" json:"attributes" toml:"attributes"`
	Fields       []FieldDoc     `yaml:"fields" json:"fields" toml:"fields"`
	Constructors []MethodDoc    `yaml:"constructors" json:"constructors" toml:"constructors"`
	Methods      []MethodDoc    `yaml:"methods" json:"methods" toml:"methods"`
	Properties   []PropertyDoc  `yaml:"properties" json:"properties" toml:"properties"`
	Events       []EventDoc     `yaml:"events" json:"events" toml:"events"`
	Values       []EnumValueDoc `yaml:"values" json:"values" toml:"values"`
	Underlying   string         `yaml:"underlying" json:"underlying" toml:"underlying"`
	Invoke       *MethodDoc     `yaml:"invoke" json:"invoke" toml:"invoke"`
}

// AttributeDoc is an attribute application.
type AttributeDoc struct {
	Name string   `yaml:"name" json:"name" toml:"name"`
	Args []string `yaml:"args" json:"args" toml:"args"`
}

// FieldDoc describes a field.
type FieldDoc struct {
	Name   string `yaml:"name" json:"name" toml:"name"`
	Type   string `yaml:"type" json:"type" toml:"type"`
	Static bool   `yaml:"static" json:"static" toml:"static"`
	Access string `yaml:"access" json:"access" toml:"access"`
}

// MethodDoc describes a method or constructor. Body is only meaningful for
// discovery-site methods.
type MethodDoc struct {
	Name       string     `yaml:"name" json:"name" toml:"name"`
	Static     bool       `yaml:"static" json:"static" toml:"static"`
	Partial    bool       `yaml:"partial" json:"partial" toml:"partial"`
	Access     string     `yaml:"access" json:"access" toml:"access"`
	Returns    string     `yaml:"returns" json:"returns" toml:"returns"`
	Params     []ParamDoc `yaml:"params" json:"params" toml:"params"`
	TypeParams []string   `yaml:"typeParams" json:"typeParams" toml:"typeParams"`
	Body       []ExprDoc  `yaml:"body" json:"body" toml:"body"`
}

// ParamDoc describes a parameter.
type ParamDoc struct {
	Name string `yaml:"name" json:"name" toml:"name"`
	Type string `yaml:"type" json:"type" toml:"type"`
	Ref  string `yaml:"ref" json:"ref" toml:"ref"`
}

// PropertyDoc describes a property. A property with neither Get nor Set
// has a getter only.
type PropertyDoc struct {
	Name   string `yaml:"name" json:"name" toml:"name"`
	Type   string `yaml:"type" json:"type" toml:"type"`
	Static bool   `yaml:"static" json:"static" toml:"static"`
	Get    bool   `yaml:"get" json:"get" toml:"get"`
	Set    bool   `yaml:"set" json:"set" toml:"set"`
}

// EventDoc describes an event.
type EventDoc struct {
	Name   string `yaml:"name" json:"name" toml:"name"`
	Type   string `yaml:"type" json:"type" toml:"type"`
	Static bool   `yaml:"static" json:"static" toml:"static"`
}

// EnumValueDoc is an enum constant.
type EnumValueDoc struct {
	Name  string `yaml:"name" json:"name" toml:"name"`
	Value int64  `yaml:"value" json:"value" toml:"value"`
}

// ExprDoc is one node of a discovery-site body. Exactly one of the
// discriminating fields (Call, New, Get, Set, Add, Remove, Type, Cast,
// Local, Literal) is set.
type ExprDoc struct {
	Call    string    `yaml:"call,omitempty" json:"call,omitempty" toml:"call,omitempty"`
	New     string    `yaml:"new,omitempty" json:"new,omitempty" toml:"new,omitempty"`
	Get     string    `yaml:"get,omitempty" json:"get,omitempty" toml:"get,omitempty"`
	Set     string    `yaml:"set,omitempty" json:"set,omitempty" toml:"set,omitempty"`
	Add     string    `yaml:"add,omitempty" json:"add,omitempty" toml:"add,omitempty"`
	Remove  string    `yaml:"remove,omitempty" json:"remove,omitempty" toml:"remove,omitempty"`
	Type    string    `yaml:"type,omitempty" json:"type,omitempty" toml:"type,omitempty"`
	Cast    string    `yaml:"cast,omitempty" json:"cast,omitempty" toml:"cast,omitempty"`
	Local   string    `yaml:"local,omitempty" json:"local,omitempty" toml:"local,omitempty"`
	Literal string    `yaml:"literal,omitempty" json:"literal,omitempty" toml:"literal,omitempty"`
	Target  *ExprDoc  `yaml:"target,omitempty" json:"target,omitempty" toml:"target,omitempty"`
	Args    []ExprDoc `yaml:"args,omitempty" json:"args,omitempty" toml:"args,omitempty"`
	Value   *ExprDoc  `yaml:"value,omitempty" json:"value,omitempty" toml:"value,omitempty"`
	Of      string    `yaml:"of,omitempty" json:"of,omitempty" toml:"of,omitempty"`
}

// DecodeDocument parses a program model in the given format ("yaml",
// "json" or "toml").
func DecodeDocument(data []byte, format string) (*Document, error) {
	var doc Document
	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing YAML program model: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing JSON program model: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing TOML program model: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported program model format %q", format)
	}
	return &doc, nil
}

// ReadDocument reads a program model file, picking the decoder by extension.
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading program model: %w", err)
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format == "" {
		format = "yaml"
	}
	doc, err := DecodeDocument(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
