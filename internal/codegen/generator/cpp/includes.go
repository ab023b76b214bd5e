package cpp

import (
	"sort"
	"strings"

	"github.com/oxidize/oxidize/internal/codegen/interop"
	"github.com/oxidize/oxidize/internal/codegen/meta"
)

// includeSet collects the includes and forward declarations of one file.
// A type that is both forward declared and included is only included.
type includeSet struct {
	self     string
	included map[string]bool
	forward  map[string]string
}

func newIncludeSet(self string) *includeSet {
	return &includeSet{self: self, included: map[string]bool{}, forward: map[string]string{}}
}

func (s *includeSet) add(path string) {
	if !strings.HasPrefix(path, "<") && !strings.HasPrefix(path, `"`) {
		path = quote(path)
	}
	if path == quote(s.self) {
		return
	}
	s.included[path] = true
}

// addRefs records what a fragment needs. In a header, types only named in
// declarations are forward declared when they can be.
func (s *includeSet) addRefs(refs meta.TypeRefs, header bool) {
	for _, p := range refs.Includes {
		s.add(p)
	}
	for _, t := range refs.Declarations {
		s.ref(t, header)
	}
	for _, t := range refs.Definitions {
		s.ref(t, false)
	}
}

func (s *includeSet) ref(t interop.CppType, forward bool) {
	if !t.NeedsInclude() {
		return
	}
	path := t.IncludePath()
	if path == s.self {
		return
	}
	if forward {
		if fd := t.ForwardDeclaration(); fd != "" {
			s.forward[quote(path)] = fd
			return
		}
	}
	s.add(path)
}

// includes returns system headers first, then generated ones, each sorted.
func (s *includeSet) includes() []string {
	var system, local []string
	for p := range s.included {
		if strings.HasPrefix(p, "<") {
			system = append(system, p)
		} else {
			local = append(local, p)
		}
	}
	sort.Strings(system)
	sort.Strings(local)
	return append(system, local...)
}

func (s *includeSet) forwards() []string {
	var out []string
	for path, fd := range s.forward {
		if !s.included[path] {
			out = append(out, fd)
		}
	}
	sort.Strings(out)
	return out
}
