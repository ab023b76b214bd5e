package common

import (
	"strconv"
	"strings"
)

// SanitizeLeadingDigit prefixes names that start with a digit with "Num"
// to keep identifiers valid in target languages.
func SanitizeLeadingDigit(name string) string {
	if name == "" {
		return ""
	}
	if name[0] >= '0' && name[0] <= '9' {
		return "Num" + name
	}
	return name
}

var cppKeywords = toSet(`alignas alignof and and_eq asm auto bitand bitor bool break case catch
char char8_t char16_t char32_t class compl concept const consteval constexpr constinit
const_cast continue co_await co_return co_yield decltype default delete do double
dynamic_cast else enum explicit export extern false float for friend goto if inline int
long mutable namespace new noexcept not not_eq nullptr operator or or_eq private
protected public register reinterpret_cast requires return short signed sizeof static
static_assert static_cast struct switch template this thread_local throw true try
typedef typeid typename union unsigned using virtual void volatile wchar_t while xor xor_eq`)

var csharpKeywords = toSet(`abstract as base bool break byte case catch char checked class const
continue decimal default delegate do double else enum event explicit extern false finally
fixed float for foreach goto if implicit in int interface internal is lock long namespace
new null object operator out override params private protected public readonly ref return
sbyte sealed short sizeof stackalloc static string struct switch this throw true try typeof
uint ulong unchecked unsafe ushort using virtual void volatile while`)

func toSet(words string) map[string]bool {
	out := map[string]bool{}
	for _, w := range strings.Fields(words) {
		out[w] = true
	}
	return out
}

// ParameterNames returns one name per entry of names that is a valid
// identifier in both C++ and C#, is unique in the list, and avoids the
// reserved names the generated bodies declare themselves. Empty names
// become arg0, arg1 and so on.
func ParameterNames(names []string, reserved ...string) []string {
	taken := map[string]bool{}
	for _, r := range reserved {
		taken[r] = true
	}
	out := make([]string, len(names))
	for i, n := range names {
		if n == "" {
			n = "arg" + strconv.Itoa(i)
		}
		n = SanitizeLeadingDigit(strings.TrimPrefix(n, "@"))
		if cppKeywords[n] || csharpKeywords[n] {
			n += "_"
		}
		for taken[n] {
			n += "_"
		}
		taken[n] = true
		out[i] = n
	}
	return out
}
