package vm

import (
	goerrors "errors"
	"sort"
	"strings"

	"jscore/pkg/errors"

	"github.com/dlclark/regexp2"
)

// RegExpObject is the internal payload of a RegExp object. Matching is
// delegated to regexp2 in ECMAScript mode. regexp2 works in runes; every
// index crossing this API is a UTF-16 code-unit offset like the rest of the
// String methods.
type RegExpObject struct {
	regex      *regexp2.Regexp
	source     string
	flags      string
	global     bool
	ignoreCase bool
	multiline  bool
}

func (r *RegExpObject) Source() string { return r.source }
func (r *RegExpObject) Flags() string { return r.flags }
func (r *RegExpObject) Global() bool { return r.global }
func (r *RegExpObject) IgnoreCase() bool { return r.ignoreCase }
func (r *RegExpObject) Multiline() bool { return r.multiline }

// compileRegExp validates flags and compiles the pattern.
func compileRegExp(pattern, flags string) (*RegExpObject, error) {
	re := &RegExpObject{source: pattern, flags: flags}
	var opts regexp2.RegexOptions = regexp2.ECMAScript
	for _, f := range flags {
		var seen *bool
		switch f {
		case 'g':
			seen = &re.global
		case 'i':
			seen = &re.ignoreCase
			opts |= regexp2.IgnoreCase
		case 'm':
			seen = &re.multiline
			opts |= regexp2.Multiline
		default:
			return nil, errInvalidFlags
		}
		if *seen {
			return nil, errInvalidFlags
		}
		*seen = true
	}
	compiled, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, err
	}
	re.regex = compiled
	return re, nil
}

var errInvalidFlags = goerrors.New("invalid regular expression flags")

// NewRegExp creates a RegExp object. Bad patterns or flags are SyntaxErrors.
func (vm *VM) NewRegExp(pattern, flags string) (*Object, error) {
	re, err := compileRegExp(pattern, flags)
	if err != nil {
		if err == errInvalidFlags {
			return nil, vm.NewSyntaxError("Invalid flags supplied to RegExp constructor '%s'", flags)
		}
		return nil, vm.NewSyntaxError("Invalid regular expression: /%s/: %s", pattern, err.Error())
	}
	o := newObjectOfClass(ClassRegExp, vm.realm.RegExpPrototype)
	o.internal = re
	o.DefineDirect("source", NewDataDescriptor(NewString(pattern), AttrNone))
	o.DefineDirect("global", NewDataDescriptor(BooleanValue(re.global), AttrNone))
	o.DefineDirect("ignoreCase", NewDataDescriptor(BooleanValue(re.ignoreCase), AttrNone))
	o.DefineDirect("multiline", NewDataDescriptor(BooleanValue(re.multiline), AttrNone))
	o.DefineDirect("lastIndex", NewDataDescriptor(IntegerValue(0), AttrWritable))
	return o, nil
}

// RegExpData returns the payload of a RegExp object.
func RegExpData(o *Object) (*RegExpObject, bool) {
	if o == nil {
		return nil, false
	}
	re, ok := o.internal.(*RegExpObject)
	return re, ok
}

// RegExpMatch is one successful match: Groups[0] is the whole match and an
// unmatched capture group is reported with Matched false.
type RegExpMatch struct {
	Index  int
	Groups []RegExpGroup
}

type RegExpGroup struct {
	Text    string
	Index   int
	Matched bool
}

// End returns the index just past the whole match.
func (m *RegExpMatch) End() int {
	return m.Index + utf16Length(m.Groups[0].Text)
}

// utf16Offsets maps rune index i to its code-unit offset offs[i]; the final
// entry is the code-unit length of the whole input.
func utf16Offsets(runes []rune) []int {
	offs := make([]int, len(runes)+1)
	for i, r := range runes {
		n := 1
		if r >= 0x10000 {
			n = 2
		}
		offs[i+1] = offs[i] + n
	}
	return offs
}

// MatchAt runs the pattern against s starting at code-unit offset start. A
// start inside a surrogate pair begins at the following character.
func (r *RegExpObject) MatchAt(s string, start int) (*RegExpMatch, error) {
	runes := []rune(s)
	offs := utf16Offsets(runes)
	if start < 0 || start > offs[len(runes)] {
		return nil, nil
	}
	m, err := r.regex.FindRunesMatchStartingAt(runes, sort.SearchInts(offs, start))
	if err != nil || m == nil {
		return nil, err
	}
	groups := m.Groups()
	out := &RegExpMatch{Index: offs[m.Index], Groups: make([]RegExpGroup, len(groups))}
	for i, g := range groups {
		if len(g.Captures) == 0 {
			continue
		}
		out.Groups[i] = RegExpGroup{Text: g.String(), Index: offs[g.Index], Matched: true}
	}
	return out, nil
}

// MatchString reports whether the pattern matches anywhere in s.
func (r *RegExpObject) MatchString(s string) (bool, error) {
	return r.regex.MatchString(s)
}

// RegExpExec implements RegExp.prototype.exec, including the lastIndex
// protocol for global patterns.
func (vm *VM) RegExpExec(o *Object, s string) (Value, error) {
	re, ok := RegExpData(o)
	if !ok {
		return Undefined, vm.NewTypeError("RegExp.prototype.exec called on incompatible receiver")
	}
	start := 0
	if re.global {
		lv, err := vm.Get(o, "lastIndex")
		if err != nil {
			return Undefined, err
		}
		n, err := vm.ToNumber(lv)
		if err != nil {
			return Undefined, err
		}
		start = int(ToInteger(n))
		if start < 0 || start > utf16Length(s) {
			return Null, vm.Put(o, "lastIndex", IntegerValue(0), true)
		}
	}
	m, err := re.MatchAt(s, start)
	if err != nil {
		return Undefined, vm.NewError(errors.KindError, "regular expression match failed: %s", err.Error())
	}
	if m == nil {
		if re.global {
			if err := vm.Put(o, "lastIndex", IntegerValue(0), true); err != nil {
				return Undefined, err
			}
		}
		return Null, nil
	}
	if re.global {
		if err := vm.Put(o, "lastIndex", IntegerValue(int64(m.End())), true); err != nil {
			return Undefined, err
		}
	}
	return ObjectValue(vm.matchArray(m, s)), nil
}

func (vm *VM) matchArray(m *RegExpMatch, input string) *Object {
	values := make([]Value, len(m.Groups))
	for i, g := range m.Groups {
		if g.Matched {
			values[i] = NewString(g.Text)
		}
	}
	arr := vm.NewArray(values...)
	arr.SetOwn("index", IntegerValue(int64(m.Index)))
	arr.SetOwn("input", NewString(input))
	return arr
}

// RegExpString renders /source/flags.
func RegExpString(re *RegExpObject) string {
	var b strings.Builder
	b.WriteByte('/')
	if re.source == "" {
		b.WriteString("(?:)")
	} else {
		b.WriteString(re.source)
	}
	b.WriteByte('/')
	if re.global {
		b.WriteByte('g')
	}
	if re.ignoreCase {
		b.WriteByte('i')
	}
	if re.multiline {
		b.WriteByte('m')
	}
	return b.String()
}
