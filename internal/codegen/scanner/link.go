package scanner

// Link resolves the inheritance graph among generated types: each type's
// BaseClass becomes its nearest generated ancestor and Interfaces every
// generated interface it implements, directly, through other interfaces,
// or through a base type. Every edge it creates points at a key of m.
func Link(m GenerationMap) {
	for _, item := range m.Sorted() {
		item.BaseClass = nil
		item.Interfaces = nil
		for b := item.Type.BaseType; b != nil; b = b.BaseType {
			if base := m.Get(b); base != nil {
				item.BaseClass = base
				break
			}
		}
		for _, i := range item.Type.AllInterfaces() {
			if iface := m.Get(i); iface != nil && iface != item {
				item.Interfaces = append(item.Interfaces, iface)
			}
		}
	}
}
