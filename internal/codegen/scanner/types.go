package scanner

import (
	"sort"

	"github.com/oxidize/oxidize/internal/codegen/symbols"
)

// TypeToGenerate accumulates everything the discovery sites need from one
// managed type. Member sets are keyed by symbol key, so the order members
// were found in never matters.
type TypeToGenerate struct {
	Type *symbols.Type

	Constructors map[string]*symbols.Method
	Methods      map[string]*symbols.Method
	Properties   map[string]*symbols.Property
	Fields       map[string]*symbols.Field
	Events       map[string]*symbols.Event

	// Set for native-implemented types.
	ImplementationClassName  string
	ImplementationHeaderName string
	MethodsImplementedInCpp  map[string]*symbols.Method

	// Filled in by Link.
	BaseClass  *TypeToGenerate
	Interfaces []*TypeToGenerate
}

// NewTypeToGenerate returns an empty record for t.
func NewTypeToGenerate(t *symbols.Type) *TypeToGenerate {
	return &TypeToGenerate{
		Type:                    t,
		Constructors:            map[string]*symbols.Method{},
		Methods:                 map[string]*symbols.Method{},
		Properties:              map[string]*symbols.Property{},
		Fields:                  map[string]*symbols.Field{},
		Events:                  map[string]*symbols.Event{},
		MethodsImplementedInCpp: map[string]*symbols.Method{},
	}
}

// Key is the generation map key of the type.
func (t *TypeToGenerate) Key() string { return t.Type.Key() }

// IsNativeImplemented reports whether the type is implemented in native code.
func (t *TypeToGenerate) IsNativeImplemented() bool {
	return t.ImplementationClassName != ""
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedValues[V any](m map[string]V) []V {
	out := make([]V, 0, len(m))
	for _, k := range sortedKeys(m) {
		out = append(out, m[k])
	}
	return out
}

// SortedConstructors returns the constructors ordered by key.
func (t *TypeToGenerate) SortedConstructors() []*symbols.Method { return sortedValues(t.Constructors) }

// SortedMethods returns the methods ordered by key.
func (t *TypeToGenerate) SortedMethods() []*symbols.Method { return sortedValues(t.Methods) }

// SortedProperties returns the properties ordered by key.
func (t *TypeToGenerate) SortedProperties() []*symbols.Property { return sortedValues(t.Properties) }

// SortedEvents returns the events ordered by key.
func (t *TypeToGenerate) SortedEvents() []*symbols.Event { return sortedValues(t.Events) }

// SortedMethodsImplementedInCpp returns the partial methods ordered by key.
func (t *TypeToGenerate) SortedMethodsImplementedInCpp() []*symbols.Method {
	return sortedValues(t.MethodsImplementedInCpp)
}

// OrderedFields returns the fields in declaration order.
func (t *TypeToGenerate) OrderedFields() []*symbols.Field {
	out := sortedValues(t.Fields)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// GenerationMap maps type keys to their accumulation records.
type GenerationMap map[string]*TypeToGenerate

// Keys returns the map keys in sorted order.
func (m GenerationMap) Keys() []string { return sortedKeys(m) }

// Sorted returns the records ordered by key.
func (m GenerationMap) Sorted() []*TypeToGenerate { return sortedValues(m) }

// Get returns the record for t, or nil.
func (m GenerationMap) Get(t *symbols.Type) *TypeToGenerate {
	if t == nil {
		return nil
	}
	return m[t.Key()]
}

// Severity of a diagnostic.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic codes.
const (
	CodeImplementationClassConflict  = "OXI001"
	CodeImplementationHeaderConflict = "OXI002"
	CodeMemberSkipped                = "OXI003"
	CodeTypeSkipped                  = "OXI004"
	CodeImplementationHeaderMissing  = "OXI005"
)

// Diagnostic is a recoverable problem found while generating. Diagnostics
// never stop generation on their own.
type Diagnostic struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Code     string   `json:"code" yaml:"code"`
	Message  string   `json:"message" yaml:"message"`
	Subject  string   `json:"subject,omitempty" yaml:"subject,omitempty"`
}

func (d Diagnostic) String() string {
	s := string(d.Severity) + " " + d.Code + ": " + d.Message
	if d.Subject != "" {
		s += " (" + d.Subject + ")"
	}
	return s
}
