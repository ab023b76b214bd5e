package symbols

import "fmt"

const (
	// ExposeAttribute marks a class whose ExposeToCPP methods are discovery sites.
	ExposeAttribute = "Reinterop"
	// ExposeMethodName is the method name scanned on exposing classes.
	ExposeMethodName = "ExposeToCPP"
	// NativeImplementationAttribute marks a class implemented in native code.
	// Its two arguments are the implementation class and header names.
	NativeImplementationAttribute = "ReinteropNativeImplementation"
)

// SiteKind distinguishes the two kinds of discovery site.
type SiteKind string

const (
	SiteExpose               SiteKind = "expose"
	SiteNativeImplementation SiteKind = "native-implementation"
)

// Site is a discovery site. Expose sites carry the method whose body is
// scanned; native-implementation sites carry the attribute arguments.
type Site struct {
	Kind   SiteKind
	Type   *Type
	Method *Method

	ImplementationClass  string
	ImplementationHeader string
}

func (s Site) String() string {
	if s.Kind == SiteExpose && s.Method != nil {
		return fmt.Sprintf("%s %s", s.Kind, s.Method.Key())
	}
	return fmt.Sprintf("%s %s", s.Kind, s.Type.Key())
}

// DiscoverSites returns every discovery site in the compilation: first the
// runtime site that binds the handle primitives the native runtime needs,
// then user sites ordered by type key and declaration order.
func DiscoverSites(c *Compilation) []Site {
	sites := []Site{runtimeSite(c)}
	for _, t := range c.Types() {
		if t.Namespace == RuntimeNamespace && t.Name == ObjectHandleUtilityName {
			continue
		}
		if _, ok := t.Attribute(ExposeAttribute); ok {
			for _, m := range t.Methods {
				if m.Name == ExposeMethodName {
					sites = append(sites, Site{Kind: SiteExpose, Type: t, Method: m})
				}
			}
		}
		if a, ok := t.Attribute(NativeImplementationAttribute); ok {
			site := Site{Kind: SiteNativeImplementation, Type: t}
			if len(a.Args) > 0 {
				site.ImplementationClass = a.Args[0]
			}
			if len(a.Args) > 1 {
				site.ImplementationHeader = a.Args[1]
			}
			sites = append(sites, site)
		}
	}
	return sites
}

// runtimeSite exposes ObjectHandleUtility.CopyHandle and FreeHandle, which
// the native ObjectHandle type calls to copy and release handles.
func runtimeSite(c *Compilation) Site {
	ohu := c.ObjectHandleUtility()
	m := &Method{
		Name:           ExposeMethodName,
		ContainingType: ohu,
		Kind:           MethodOrdinary,
		IsStatic:       true,
		Accessibility:  Private,
		ReturnType:     c.Special(SpecialVoid),
	}
	for _, name := range []string{"CopyHandle", "FreeHandle"} {
		for _, target := range ohu.Methods {
			if target.Name == name {
				m.Body = append(m.Body, &Invocation{Method: target, Args: []Expr{&Literal{Value: "0"}}})
			}
		}
	}
	return Site{Kind: SiteExpose, Type: ohu, Method: m}
}
