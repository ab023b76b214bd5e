// Package emit turns linked TypeToGenerate records into GeneratedResults.
// Every bound member becomes a native declaration and definition, one
// slot in the function pointer table and the managed trampoline that
// fills that slot.
package emit

import (
	"context"
	"fmt"

	"github.com/oxidize/oxidize/internal/codegen/interop"
	"github.com/oxidize/oxidize/internal/codegen/meta"
	"github.com/oxidize/oxidize/internal/codegen/scanner"
	"github.com/oxidize/oxidize/internal/codegen/symbols"
	"github.com/oxidize/oxidize/internal/log"
)

// RegisterBuiltins adds the custom generators that ship with oxidize.
func RegisterBuiltins(ctx *meta.Context) {
	ctx.Register(StringGenerator{})
}

// GenerateAll emits every type of the context's generation map, ordered
// by type key. The order is the order of the function pointer table.
func GenerateAll(ctx *meta.Context) []*meta.GeneratedResult {
	items := ctx.Types.Sorted()
	out := make([]*meta.GeneratedResult, 0, len(items))
	for _, item := range items {
		out = append(out, GenerateType(ctx, item))
	}
	return out
}

// GenerateType emits one type.
func GenerateType(ctx *meta.Context, item *scanner.TypeToGenerate) *meta.GeneratedResult {
	t := item.Type
	kind := ctx.Kind(t)
	self := ctx.CppType(t)

	keyword := self.Keyword()
	if kind == interop.KindEnum {
		keyword = ""
	}
	result := meta.NewGeneratedResult(item, self, keyword)
	e := &typeEmitter{
		ctx:    ctx,
		item:   item,
		result: result,
		self:   self,
		kind:   kind,
		names:  interop.NewNameRegistry(),
		scope:  self.LocalName(),
	}
	ctx.Logger.Debug("Generating type", "type", item.Key(), "kind", kind)

	switch kind {
	case interop.KindPrimitive, interop.KindGenericParameter:
		result.Diagnose(scanner.SeverityInfo, scanner.CodeTypeSkipped,
			fmt.Sprintf("%s has no native wrapper", kind))
		return result
	case interop.KindEnum:
		e.enum()
	default:
		if kind.IsWrapper() && !t.IsStatic {
			e.handleManagement()
		}
		if kind == interop.KindBlittableStruct {
			e.fields()
		}
		for _, c := range item.SortedConstructors() {
			e.constructor(c)
		}
		e.methods()
		for _, p := range item.SortedProperties() {
			e.property(p)
		}
		for _, ev := range item.SortedEvents() {
			e.event(ev)
		}
		if kind.IsWrapper() && !t.IsStatic {
			e.casts()
		}
		if item.IsNativeImplemented() {
			e.nativeImplementation()
		}
	}

	if g := ctx.CustomGenerator(t); g != nil {
		ctx.Logger.Debug("Running custom generator", "type", item.Key())
		g.Generate(ctx, item, result)
	}
	return result
}

type typeEmitter struct {
	ctx    *meta.Context
	item   *scanner.TypeToGenerate
	result *meta.GeneratedResult
	self   interop.CppType
	kind   interop.Kind
	names  *interop.NameRegistry
	// scope qualifies out-of-class definitions, Box<int32_t> for a
	// specialization.
	scope string
}

func (e *typeEmitter) trace(msg string, args ...any) {
	e.ctx.Logger.Log(context.Background(), log.LevelTrace, msg, append([]any{"type", e.item.Key()}, args...)...)
}

// skip records a member that cannot be bound.
func (e *typeEmitter) skip(member, reason string) {
	e.ctx.Logger.Debug("Skipping member", "type", e.item.Key(), "member", member, "reason", reason)
	e.result.Diagnose(scanner.SeverityInfo, scanner.CodeMemberSkipped,
		fmt.Sprintf("%s skipped: %s", member, reason))
}

// isValueType reports whether the managed instance is a value that
// cannot be mutated through a handle.
func (e *typeEmitter) isValueType() bool {
	return e.item.Type.IsValueType()
}

// thisExpression is the managed expression that recovers the instance
// inside a trampoline.
func (e *typeEmitter) thisExpression() string {
	if e.kind == interop.KindBlittableStruct {
		return "thiz"
	}
	return "((" + interop.CSharpName(e.item.Type) + ")ObjectHandleUtility.GetObjectFromHandle(thiz))"
}

// unsupportedParameters reports why a method cannot be bound, or "".
func unsupportedParameters(m *symbols.Method) string {
	for _, p := range m.Parameters {
		if p.RefKind != "" {
			return p.RefKind + " parameter " + p.Name
		}
		if p.Type == nil {
			return "unresolved type of parameter " + p.Name
		}
	}
	return ""
}
