package scanner

import "github.com/oxidize/oxidize/internal/codegen/symbols"

// TypeSummary is the printable form of one generation map entry.
type TypeSummary struct {
	Type             string   `json:"type" yaml:"type"`                                               // Managed type key
	Kind             string   `json:"kind,omitempty" yaml:"kind,omitempty"`                           // Native representation
	BaseClass        string   `json:"baseClass,omitempty" yaml:"baseClass,omitempty"`                 // Nearest generated ancestor
	Interfaces       []string `json:"interfaces,omitempty" yaml:"interfaces,omitempty"`               // Generated interfaces
	Constructors     []string `json:"constructors,omitempty" yaml:"constructors,omitempty"`           // Bound constructors
	Methods          []string `json:"methods,omitempty" yaml:"methods,omitempty"`                     // Bound methods
	Properties       []string `json:"properties,omitempty" yaml:"properties,omitempty"`               // Bound properties
	Fields           []string `json:"fields,omitempty" yaml:"fields,omitempty"`                       // Referenced fields
	Events           []string `json:"events,omitempty" yaml:"events,omitempty"`                       // Bound events
	Implementation   string   `json:"implementation,omitempty" yaml:"implementation,omitempty"`       // Native implementation class
	Header           string   `json:"header,omitempty" yaml:"header,omitempty"`                       // Native implementation header
	ImplementedInCpp []string `json:"implementedInCpp,omitempty" yaml:"implementedInCpp,omitempty"` // Partial methods
}

// Summarize renders the map in key order. kind may be nil.
func Summarize(m GenerationMap, kind func(*symbols.Type) string) []TypeSummary {
	out := make([]TypeSummary, 0, len(m))
	for _, item := range m.Sorted() {
		s := TypeSummary{
			Type:           item.Key(),
			Implementation: item.ImplementationClassName,
			Header:         item.ImplementationHeaderName,
		}
		if kind != nil {
			s.Kind = kind(item.Type)
		}
		if item.BaseClass != nil {
			s.BaseClass = item.BaseClass.Key()
		}
		for _, i := range item.Interfaces {
			s.Interfaces = append(s.Interfaces, i.Key())
		}
		s.Constructors = sortedKeys(item.Constructors)
		s.Methods = sortedKeys(item.Methods)
		s.Properties = sortedKeys(item.Properties)
		s.Fields = sortedKeys(item.Fields)
		s.Events = sortedKeys(item.Events)
		s.ImplementedInCpp = sortedKeys(item.MethodsImplementedInCpp)
		out = append(out, s)
	}
	return out
}
