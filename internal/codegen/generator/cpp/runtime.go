package cpp

import (
	"sort"
	"strings"

	"github.com/oxidize/oxidize/internal/codegen/common"
	"github.com/oxidize/oxidize/internal/codegen/meta"
)

const exportTemplate = `{{.Header}}
#pragma once

#if defined(_WIN32)
#define OXIDIZE_EXPORT __declspec(dllexport)
#else
#define OXIDIZE_EXPORT __attribute__((visibility("default")))
#endif
`

const initializeHeaderTemplate = `{{.Header}}
#pragma once

#include <cstdint>
#include "{{.Export}}"

extern "C" OXIDIZE_EXPORT void initializeOxidize(void** functionPointers, int32_t count);
`

const initializeSourceTemplate = `{{.Header}}
#include "initializeOxidize.h"
{{- range .Includes}}
#include "{{.}}"
{{- end}}
#include <cstdlib>

// Table identity: {{.TableID}}

extern "C" OXIDIZE_EXPORT void initializeOxidize(void** functionPointers, int32_t count) {
    if (count != {{.Count}}) {
        std::abort();
    }
{{- range $i, $e := .Entries}}
    {{$e.FieldName}} = reinterpret_cast<{{$e.FunctionPointerType}}>(functionPointers[{{$i}}]);
{{- end}}
}
`

const objectHandleHeaderTemplate = `{{.Header}}
#pragma once

namespace {{.Namespace}} {

// ObjectHandle owns one managed object handle. Copies duplicate the handle
// on the managed side and destruction frees it.
class ObjectHandle {
public:
    ObjectHandle() noexcept;
    explicit ObjectHandle(void* handle) noexcept;
    ObjectHandle(const ObjectHandle& rhs) noexcept;
    ObjectHandle(ObjectHandle&& rhs) noexcept;
    ~ObjectHandle() noexcept;

    ObjectHandle& operator=(const ObjectHandle& rhs) noexcept;
    ObjectHandle& operator=(ObjectHandle&& rhs) noexcept;

    void* GetRaw() const;
    void* Release();

private:
    void* _handle;
};

} // namespace {{.Namespace}}
`

const objectHandleSourceTemplate = `{{.Header}}
#include "{{.Dir}}/ObjectHandle.h"
#include "{{.Dir}}/ObjectHandleUtility.h"
#include <utility>

namespace {{.Namespace}} {

ObjectHandle::ObjectHandle() noexcept : _handle(nullptr) {}

ObjectHandle::ObjectHandle(void* handle) noexcept : _handle(handle) {}

ObjectHandle::ObjectHandle(const ObjectHandle& rhs) noexcept
    : _handle(rhs._handle == nullptr ? nullptr : ObjectHandleUtility::CopyHandle(rhs._handle)) {}

ObjectHandle::ObjectHandle(ObjectHandle&& rhs) noexcept : _handle(rhs._handle) {
    rhs._handle = nullptr;
}

ObjectHandle::~ObjectHandle() noexcept {
    if (this->_handle != nullptr) {
        ObjectHandleUtility::FreeHandle(this->_handle);
    }
}

ObjectHandle& ObjectHandle::operator=(const ObjectHandle& rhs) noexcept {
    if (&rhs != this) {
        ObjectHandle copy(rhs);
        std::swap(this->_handle, copy._handle);
    }
    return *this;
}

ObjectHandle& ObjectHandle::operator=(ObjectHandle&& rhs) noexcept {
    std::swap(this->_handle, rhs._handle);
    return *this;
}

void* ObjectHandle::GetRaw() const {
    return this->_handle;
}

void* ObjectHandle::Release() {
    void* handle = this->_handle;
    this->_handle = nullptr;
    return handle;
}

} // namespace {{.Namespace}}
`

// runtimeFiles renders the initializer, the handle class and the export
// macro. Paths are relative to the header or source root.
func runtimeFiles(ctx *meta.Context, table meta.Table) ([]common.File, error) {
	dir := runtimeDir(ctx)
	ns := strings.ReplaceAll(dir, "/", "::")
	header := writeFileHeader()

	headers := map[string]bool{}
	for _, e := range table.Cpp {
		headers[e.Header] = true
	}
	var includes []string
	for h := range headers {
		includes = append(includes, h)
	}
	sort.Strings(includes)

	specs := []struct {
		path, name, text string
		data             map[string]any
	}{
		{dir + "/Export.h", "export", exportTemplate, map[string]any{"Header": header}},
		{InitializeHeader, "initializeHeader", initializeHeaderTemplate, map[string]any{
			"Header": header,
			"Export": dir + "/Export.h",
		}},
		{"initializeOxidize.cpp", "initializeSource", initializeSourceTemplate, map[string]any{
			"Header":   header,
			"Includes": includes,
			"TableID":  table.ID,
			"Count":    table.Len(),
			"Entries":  table.Cpp,
		}},
		{dir + "/ObjectHandle.h", "objectHandleHeader", objectHandleHeaderTemplate, map[string]any{
			"Header":    header,
			"Namespace": ns,
		}},
		{dir + "/ObjectHandle.cpp", "objectHandleSource", objectHandleSourceTemplate, map[string]any{
			"Header":    header,
			"Namespace": ns,
			"Dir":       dir,
		}},
	}

	files := make([]common.File, 0, len(specs))
	for _, s := range specs {
		content, err := render(s.name, s.text, s.data)
		if err != nil {
			return nil, err
		}
		files = append(files, common.File{Path: s.path, Content: content})
	}
	return files, nil
}
