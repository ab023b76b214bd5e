// Package csharp assembles the managed half of the bindings: the
// initializer that hands the function pointer table to native code, the
// handle runtime and the partial classes of native-implemented types.
package csharp

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/oxidize/oxidize/internal/codegen/common"
	"github.com/oxidize/oxidize/internal/codegen/meta"
)

func writeFileHeader() string {
	return common.FileHeader("//", "C#")
}

var tplFuncs = template.FuncMap{
	"indent": indent,
}

// Generate renders every managed file. Nothing is written; the caller
// decides what reaches the disk.
func Generate(logger *slog.Logger, layout meta.Layout, ctx *meta.Context, results []*meta.GeneratedResult, table meta.Table) ([]common.File, error) {
	var files []common.File
	add := func(name string, content []byte) {
		files = append(files, common.File{Path: filepath.Join(layout.ManagedDir, filepath.FromSlash(name)), Content: content})
	}

	initializer, err := render("initializer", initializerTemplate, map[string]any{
		"Header":      writeFileHeader(),
		"TableID":     table.ID,
		"Count":       table.Len(),
		"Entries":     table.CSharp,
		"LibraryName": ctx.Options.NativeLibraryName,
	})
	if err != nil {
		return nil, err
	}
	add("ReinteropInitializer.cs", initializer)

	util, err := render("objectHandleUtility", objectHandleUtilityTemplate, map[string]any{
		"Header": writeFileHeader(),
	})
	if err != nil {
		return nil, err
	}
	add("ObjectHandleUtility.cs", util)

	for _, r := range results {
		p := r.CSharpPartialMethodDefinitions
		if p == nil {
			continue
		}
		logger.Debug("Assembling partial class", "type", r.Item.Key())
		content, err := render("partial", partialTemplate, map[string]any{
			"Header":    writeFileHeader(),
			"Namespace": p.Namespace,
			"TypeName":  p.TypeName,
			"Members":   p.Members,
		})
		if err != nil {
			return nil, err
		}
		add(partialPath(p), content)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	logger.Info("Assembled managed bindings", "files", len(files), "slots", table.Len())
	return files, nil
}

func partialPath(p *meta.CSharpPartialMethodDefinitions) string {
	name := p.TypeName + ".Reinterop.cs"
	if p.Namespace == "" {
		return name
	}
	return strings.ReplaceAll(p.Namespace, ".", "/") + "/" + name
}

const initializerTemplate = `{{.Header}}
namespace Reinterop
{
    internal static partial class ReinteropInitializer
    {
        // Table identity: {{.TableID}}
        public const string TableId = "{{.TableID}}";

        private static readonly object _initializeLock = new object();
        private static volatile bool _initialized;

        public static void Initialize()
        {
            if (_initialized)
                return;

            lock (_initializeLock)
            {
                if (_initialized)
                    return;

                System.IntPtr memory = System.Runtime.InteropServices.Marshal.AllocHGlobal({{.Count}} * System.IntPtr.Size);
                try
                {
{{- range $i, $e := .Entries}}
                    System.Runtime.InteropServices.Marshal.WriteIntPtr(memory, {{$i}} * System.IntPtr.Size, System.Runtime.InteropServices.Marshal.GetFunctionPointerForDelegate({{$e.Name}}Delegate));
{{- end}}
                    initializeOxidize(memory, {{.Count}});
                }
                finally
                {
                    System.Runtime.InteropServices.Marshal.FreeHGlobal(memory);
                }
                _initialized = true;
            }
        }

        [System.Runtime.InteropServices.DllImport("{{.LibraryName}}", CallingConvention = System.Runtime.InteropServices.CallingConvention.Cdecl)]
        private static extern void initializeOxidize(System.IntPtr functionPointers, int count);
{{range .Entries}}
{{.Content}}
{{- end}}
    }
}
`

const objectHandleUtilityTemplate = `{{.Header}}
namespace Reinterop
{
    [System.AttributeUsage(System.AttributeTargets.Method)]
    internal sealed class MonoPInvokeCallbackAttribute : System.Attribute
    {
        public MonoPInvokeCallbackAttribute(System.Type type)
        {
            Type = type;
        }

        public System.Type Type { get; }
    }

    internal static class ObjectHandleUtility
    {
        public static System.IntPtr CreateHandle(object o)
        {
            if (o == null)
                return System.IntPtr.Zero;
            return System.Runtime.InteropServices.GCHandle.ToIntPtr(System.Runtime.InteropServices.GCHandle.Alloc(o));
        }

        public static System.IntPtr CopyHandle(System.IntPtr handle)
        {
            if (handle == System.IntPtr.Zero)
                return System.IntPtr.Zero;
            return CreateHandle(GetObjectFromHandle(handle));
        }

        public static void FreeHandle(System.IntPtr handle)
        {
            if (handle == System.IntPtr.Zero)
                return;
            System.Runtime.InteropServices.GCHandle.FromIntPtr(handle).Free();
        }

        public static object GetObjectFromHandle(System.IntPtr handle)
        {
            if (handle == System.IntPtr.Zero)
                return null;
            return System.Runtime.InteropServices.GCHandle.FromIntPtr(handle).Target;
        }

        public static object GetObjectFromHandleAndFree(System.IntPtr handle)
        {
            object result = GetObjectFromHandle(handle);
            FreeHandle(handle);
            return result;
        }
    }
}
`

const partialTemplate = `{{.Header}}
using Reinterop;
{{if .Namespace}}
namespace {{.Namespace}}
{
    partial class {{.TypeName}} : System.IDisposable
    {
{{- range .Members}}
{{indent . "        "}}
{{end}}
    }
}
{{- else}}
partial class {{.TypeName}} : System.IDisposable
{
{{- range .Members}}
{{indent . "    "}}
{{end}}
}
{{- end}}
`

func render(name, text string, data any) ([]byte, error) {
	tmpl, err := template.New(name).Funcs(tplFuncs).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse %s template: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute %s template: %w", name, err)
	}
	return buf.Bytes(), nil
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}
