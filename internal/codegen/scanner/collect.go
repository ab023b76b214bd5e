package scanner

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/oxidize/oxidize/internal/codegen/symbols"
)

// Collect walks one discovery site and returns the types it touches. It
// reads the symbol graph only and is safe to run concurrently with other
// collections over the same compilation.
func Collect(site symbols.Site, logger *slog.Logger) GenerationMap {
	c := &collector{out: GenerationMap{}, logger: logger.With("site", site.String())}
	switch site.Kind {
	case symbols.SiteExpose:
		if site.Method != nil {
			for _, e := range site.Method.Body {
				c.expr(e)
			}
		}
	case symbols.SiteNativeImplementation:
		c.nativeImplementation(site)
	}
	return c.out
}

// CollectAll collects every site concurrently. Results are returned in site
// order.
func CollectAll(ctx context.Context, sites []symbols.Site, logger *slog.Logger) ([]GenerationMap, error) {
	results := make([]GenerationMap, len(sites))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, site := range sites {
		i, site := i, site
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = Collect(site, logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

type collector struct {
	out    GenerationMap
	logger *slog.Logger
}

func (c *collector) expr(e symbols.Expr) {
	switch n := e.(type) {
	case nil:
	case *symbols.Invocation:
		c.method(n.Method)
		c.expr(n.Target)
		for _, a := range n.Args {
			c.expr(a)
		}
	case *symbols.MemberAccess:
		c.member(n.Member)
		c.expr(n.Target)
	case *symbols.ObjectCreation:
		c.method(n.Constructor)
		for _, a := range n.Args {
			c.expr(a)
		}
	case *symbols.Identifier:
		if t, ok := n.Symbol.(*symbols.Type); ok {
			c.register(t)
		} else if n.Symbol != nil {
			c.member(n.Symbol)
		}
	case *symbols.Assignment:
		c.expr(n.Left)
		c.expr(n.Right)
	case *symbols.Cast:
		c.register(n.Type)
		c.expr(n.Operand)
	case *symbols.LocalDeclaration:
		c.register(n.Type)
		c.expr(n.Init)
	case *symbols.Literal:
		c.register(n.Type)
	}
}

func (c *collector) member(s symbols.Symbol) {
	switch m := s.(type) {
	case *symbols.Property:
		if item := c.register(m.ContainingType); item != nil {
			item.Properties[m.Key()] = m
			c.register(m.Type)
		}
	case *symbols.Field:
		if item := c.register(m.ContainingType); item != nil {
			item.Fields[m.Key()] = m
			c.register(m.Type)
		}
	case *symbols.Event:
		if item := c.register(m.ContainingType); item != nil {
			item.Events[m.Key()] = m
			c.register(m.Type)
		}
	case *symbols.Method:
		c.method(m)
	case *symbols.Type:
		c.register(m)
	}
}

func (c *collector) method(m *symbols.Method) {
	if m == nil {
		return
	}
	if m.IsGenericDefinition() {
		c.logger.Debug("Skipping open generic method", "method", m.Key())
		return
	}
	item := c.register(m.ContainingType)
	if item == nil {
		return
	}
	switch m.Kind {
	case symbols.MethodConstructor:
		item.Constructors[m.Key()] = m
	case symbols.MethodGetter, symbols.MethodSetter:
		if p := accessorProperty(m); p != nil {
			c.member(p)
			return
		}
		item.Methods[m.Key()] = m
	case symbols.MethodEventAdd, symbols.MethodEventRemove:
		if e := accessorEvent(m); e != nil {
			c.member(e)
			return
		}
		item.Methods[m.Key()] = m
	default:
		item.Methods[m.Key()] = m
	}
	c.register(m.ReturnType)
	for _, p := range m.Parameters {
		c.register(p.Type)
	}
	for _, a := range m.TypeArguments {
		c.register(a)
	}
}

func accessorProperty(m *symbols.Method) *symbols.Property {
	for _, p := range m.ContainingType.Properties {
		if p.Getter == m || p.Setter == m {
			return p
		}
	}
	return nil
}

func accessorEvent(m *symbols.Method) *symbols.Event {
	for _, e := range m.ContainingType.Events {
		if e.Adder == m || e.Remover == m {
			return e
		}
	}
	return nil
}

// register adds t to the map, returning its record, or nil when t is not
// a generation target (primitives, void, open generics).
func (c *collector) register(t *symbols.Type) *TypeToGenerate {
	if t == nil || t.Special.IsPrimitive() {
		return nil
	}
	if t.IsOpenGeneric() {
		c.logger.Debug("Skipping open generic type", "type", t.Key())
		return nil
	}
	if item, ok := c.out[t.Key()]; ok {
		return item
	}
	item := NewTypeToGenerate(t)
	c.out[t.Key()] = item

	for _, a := range t.TypeArguments {
		c.register(a)
	}
	switch t.Shape {
	case symbols.ShapeDelegate:
		if t.Invoke != nil {
			c.method(t.Invoke)
		}
	case symbols.ShapeStruct:
		// A struct copied by value needs its whole layout.
		for _, f := range t.Fields {
			if !f.IsStatic {
				item.Fields[f.Key()] = f
				c.register(f.Type)
			}
		}
	}
	return item
}

func (c *collector) nativeImplementation(site symbols.Site) {
	item := c.register(site.Type)
	if item == nil {
		return
	}
	item.ImplementationClassName = site.ImplementationClass
	item.ImplementationHeaderName = site.ImplementationHeader
	for _, m := range site.Type.Methods {
		if !m.IsPartial {
			continue
		}
		item.MethodsImplementedInCpp[m.Key()] = m
		c.register(m.ReturnType)
		for _, p := range m.Parameters {
			c.register(p.Type)
		}
	}
}
