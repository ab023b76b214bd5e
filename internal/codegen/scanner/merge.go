package scanner

import (
	"fmt"
	"maps"
)

// Merge combines per-site maps into one, keyed by type. Member sets are
// unioned. The implementation class and header are taken from the first
// map that sets them; a later, different value is reported as a
// diagnostic and ignored. The inputs are not modified.
func Merge(parts ...GenerationMap) (GenerationMap, []Diagnostic) {
	out := GenerationMap{}
	var diags []Diagnostic
	for _, part := range parts {
		for _, key := range part.Keys() {
			src := part[key]
			dst, ok := out[key]
			if !ok {
				dst = NewTypeToGenerate(src.Type)
				out[key] = dst
			}
			maps.Copy(dst.Constructors, src.Constructors)
			maps.Copy(dst.Methods, src.Methods)
			maps.Copy(dst.Properties, src.Properties)
			maps.Copy(dst.Fields, src.Fields)
			maps.Copy(dst.Events, src.Events)
			maps.Copy(dst.MethodsImplementedInCpp, src.MethodsImplementedInCpp)

			if d, ok := reconcile(&dst.ImplementationClassName, src.ImplementationClassName, key,
				CodeImplementationClassConflict, "implementation class"); ok {
				diags = append(diags, d)
			}
			if d, ok := reconcile(&dst.ImplementationHeaderName, src.ImplementationHeaderName, key,
				CodeImplementationHeaderConflict, "implementation header"); ok {
				diags = append(diags, d)
			}
		}
	}
	return out, diags
}

func reconcile(dst *string, src, key, code, what string) (Diagnostic, bool) {
	switch {
	case src == "" || *dst == src:
		return Diagnostic{}, false
	case *dst == "":
		*dst = src
		return Diagnostic{}, false
	}
	return Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		Message:  fmt.Sprintf("conflicting %s %q ignored, keeping %q", what, src, *dst),
		Subject:  key,
	}, true
}
