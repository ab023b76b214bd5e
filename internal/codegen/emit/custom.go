package emit

import (
	"github.com/oxidize/oxidize/internal/codegen/interop"
	"github.com/oxidize/oxidize/internal/codegen/meta"
	"github.com/oxidize/oxidize/internal/codegen/scanner"
)

// StringGenerator adds std::string conversions to System.String.
type StringGenerator struct{}

func (StringGenerator) ManagedTypeName() string { return "System.String" }

func (StringGenerator) Generate(ctx *meta.Context, item *scanner.TypeToGenerate, result *meta.GeneratedResult) {
	self := result.CppType
	e := &typeEmitter{
		ctx:    ctx,
		item:   item,
		result: result,
		self:   self,
		kind:   ctx.Kind(item.Type),
		names:  interop.NewNameRegistry(),
		scope:  self.LocalName(),
	}
	// Earlier slots on the same result keep their names.
	for _, entry := range result.CppInit {
		name := entry.FieldName[len(self.QualifiedName())+2:]
		e.names.Unique(name, "existing/"+name)
	}

	create := e.addSlot(slot{
		name:     "CreateFromStlString",
		key:      "System.String/CreateFromStlString",
		ret:      interop.Handle,
		csReturn: "System.IntPtr",
		params: []interopParam{
			{name: "data", cpp: interop.Pointer, cs: "System.IntPtr"},
			{name: "size", cpp: interop.Int32, cs: "int"},
		},
		csBody: []string{
			"if (size == 0)",
			"    return ObjectHandleUtility.CreateHandle(string.Empty);",
			"var bytes = new byte[size];",
			"System.Runtime.InteropServices.Marshal.Copy(data, bytes, 0, size);",
			"return ObjectHandleUtility.CreateHandle(System.Text.Encoding.UTF8.GetString(bytes));",
		},
	})
	toStl := e.addSlot(slot{
		name:     "ToStlString",
		key:      "System.String/ToStlString",
		ret:      interop.Int32,
		csReturn: "int",
		params: []interopParam{
			{name: "thiz", cpp: interop.Handle, cs: "System.IntPtr"},
			{name: "buffer", cpp: interop.Pointer, cs: "System.IntPtr"},
			{name: "size", cpp: interop.Int32, cs: "int"},
		},
		csBody: []string{
			"var bytes = System.Text.Encoding.UTF8.GetBytes((string)ObjectHandleUtility.GetObjectFromHandle(thiz));",
			"if (buffer != System.IntPtr.Zero && bytes.Length <= size)",
			"    System.Runtime.InteropServices.Marshal.Copy(bytes, 0, buffer, bytes.Length);",
			"return bytes.Length;",
		},
	})

	stringRefs := meta.TypeRefs{
		Declarations: []interop.CppType{interop.Int32},
		Includes:     []string{"<string>"},
	}
	result.Declaration.Add(meta.CppDeclarationElement{
		Content:  self.Name + "(const std::string& value);",
		TypeRefs: stringRefs,
	})
	result.Declaration.Add(meta.CppDeclarationElement{
		Content:  "std::string ToStlString() const;",
		TypeRefs: stringRefs,
	})

	defRefs := meta.TypeRefs{
		Definitions: []interop.CppType{interop.Int32, ctx.Interop.HandleType()},
		Includes:    []string{"<string>"},
	}
	result.Definition.Add(meta.CppDefinitionElement{
		Content: e.scope + "::" + self.Name + "(const std::string& value)\n" +
			"    : _handle(" + create + "(const_cast<char*>(value.data()), static_cast<int32_t>(value.size()))) {\n}",
		TypeRefs: defRefs,
	})
	result.Definition.Add(meta.CppDefinitionElement{
		Content: "std::string " + e.scope + "::ToStlString() const {\n" +
			"    void* handle = this->GetHandle().GetRaw();\n" +
			"    int32_t size = " + toStl + "(handle, nullptr, 0);\n" +
			"    std::string result(static_cast<size_t>(size), '\\0');\n" +
			"    " + toStl + "(handle, result.data(), size);\n" +
			"    return result;\n}",
		TypeRefs: defRefs,
	})
	e.trace("Added std::string conversions")
}
