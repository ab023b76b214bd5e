package interop

import (
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/oxidize/oxidize/internal/codegen/symbols"
)

// SignatureHash is a stable content hash of a method's type arguments and
// parameter types, used to tell overloads and instantiations apart.
func SignatureHash(m *symbols.Method) string {
	var b strings.Builder
	for _, a := range m.TypeArguments {
		b.WriteString(a.Key())
		b.WriteString(";")
	}
	b.WriteString("(")
	for _, p := range m.Parameters {
		b.WriteString(p.RefKind)
		b.WriteString(p.Type.Key())
		b.WriteString(";")
	}
	b.WriteString(")")
	return strconv.FormatUint(xxh3.HashString(b.String()), 16)
}

// MethodFieldName names the function pointer slot of an ordinary method.
func MethodFieldName(m *symbols.Method) string {
	return "Method_" + m.Name + "_" + SignatureHash(m)
}

// ConstructorFieldName names the function pointer slot of a constructor.
func ConstructorFieldName(m *symbols.Method) string {
	return "Construct_" + SignatureHash(m)
}

// PropertyGetterFieldName names the slot of a property getter.
func PropertyGetterFieldName(p *symbols.Property) string { return "Property_get_" + p.Name }

// PropertySetterFieldName names the slot of a property setter.
func PropertySetterFieldName(p *symbols.Property) string { return "Property_set_" + p.Name }

// EventAddFieldName names the slot of an event adder.
func EventAddFieldName(e *symbols.Event) string { return "Event_add_" + e.Name }

// EventRemoveFieldName names the slot of an event remover.
func EventRemoveFieldName(e *symbols.Event) string { return "Event_remove_" + e.Name }

// NameRegistry hands out slot names within one type. Two members that
// produce the same name (a hash collision, or names that only differ in
// characters C++ cannot spell) get numbered suffixes in registration
// order, and a member asking twice gets its first name back.
type NameRegistry struct {
	owners map[string]string
	byKey  map[string]string
}

// NewNameRegistry returns an empty registry.
func NewNameRegistry() *NameRegistry {
	return &NameRegistry{owners: map[string]string{}, byKey: map[string]string{}}
}

// Unique returns name for the member identified by key, or name with a
// numbered suffix when a different member already holds it.
func (r *NameRegistry) Unique(name, key string) string {
	if n, ok := r.byKey[key]; ok {
		return n
	}
	candidate := name
	for i := 2; ; i++ {
		owner, taken := r.owners[candidate]
		if !taken || owner == key {
			break
		}
		candidate = name + "_" + strconv.Itoa(i)
	}
	r.owners[candidate] = key
	r.byKey[key] = candidate
	return candidate
}

// Identifier turns a managed name into a C/C# identifier fragment, for
// example `Demo.Box<int>` into `Demo_Box_int`.
func Identifier(s string) string {
	var b strings.Builder
	underscore := false
	for _, r := range s {
		ok := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if ok {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
