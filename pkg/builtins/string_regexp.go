package builtins

import (
	"math"
	"strings"

	"jscore/pkg/errors"
	"jscore/pkg/vm"
)

// Pattern-based String methods. Positions are UTF-16 code-unit offsets, the
// same ones indexOf and slice use.

// toRegExp returns v when it is a RegExp object, otherwise compiles
// ToString(v) as a pattern with no flags.
func toRegExp(vmInstance *vm.VM, v vm.Value) (*vm.Object, *vm.RegExpObject, error) {
	if obj := v.AsObject(); obj != nil {
		if re, ok := vm.RegExpData(obj); ok {
			return obj, re, nil
		}
	}
	pattern := ""
	if !v.IsUndefined() {
		s, err := vmInstance.ToString(v)
		if err != nil {
			return nil, nil, err
		}
		pattern = s
	}
	obj, err := vmInstance.NewRegExp(pattern, "")
	if err != nil {
		return nil, nil, err
	}
	re, _ := vm.RegExpData(obj)
	return obj, re, nil
}

func matchFailed(vmInstance *vm.VM, err error) error {
	return vmInstance.NewError(errors.KindError, "regular expression match failed: %s", err.Error())
}

// allMatches collects successive matches, stepping one unit past each empty
// one so it is never reported twice.
func allMatches(vmInstance *vm.VM, re *vm.RegExpObject, str string) ([]*vm.RegExpMatch, error) {
	var out []*vm.RegExpMatch
	n := vm.UTF16Length(str)
	for pos := 0; pos <= n; {
		m, err := re.MatchAt(str, pos)
		if err != nil {
			return nil, matchFailed(vmInstance, err)
		}
		if m == nil {
			break
		}
		out = append(out, m)
		if end := m.End(); end > m.Index {
			pos = end
		} else {
			pos = end + 1
		}
	}
	return out, nil
}

func stringMatch(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
	str, err := thisString(vmInstance, this, "String.prototype.match")
	if err != nil {
		return vm.Undefined, err
	}
	obj, re, err := toRegExp(vmInstance, argAt(args, 0))
	if err != nil {
		return vm.Undefined, err
	}
	if !re.Global() {
		return vmInstance.RegExpExec(obj, str)
	}
	matches, err := allMatches(vmInstance, re, str)
	if err != nil {
		return vm.Undefined, err
	}
	if err := vmInstance.Put(obj, "lastIndex", vm.IntegerValue(0), true); err != nil {
		return vm.Undefined, err
	}
	if len(matches) == 0 {
		return vm.Null, nil
	}
	found := make([]string, len(matches))
	for i, m := range matches {
		found[i] = m.Groups[0].Text
	}
	return vm.ObjectValue(newStringArray(vmInstance, found)), nil
}

func stringSearch(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
	str, err := thisString(vmInstance, this, "String.prototype.search")
	if err != nil {
		return vm.Undefined, err
	}
	_, re, err := toRegExp(vmInstance, argAt(args, 0))
	if err != nil {
		return vm.Undefined, err
	}
	m, err := re.MatchAt(str, 0)
	if err != nil {
		return vm.Undefined, matchFailed(vmInstance, err)
	}
	if m == nil {
		return vm.IntegerValue(-1), nil
	}
	return vm.IntegerValue(int64(m.Index)), nil
}

func stringReplace(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
	str, err := thisString(vmInstance, this, "String.prototype.replace")
	if err != nil {
		return vm.Undefined, err
	}
	searchValue, replaceValue := argAt(args, 0), argAt(args, 1)

	var matches []*vm.RegExpMatch
	if obj := searchValue.AsObject(); obj != nil {
		if re, ok := vm.RegExpData(obj); ok {
			if re.Global() {
				if matches, err = allMatches(vmInstance, re, str); err != nil {
					return vm.Undefined, err
				}
				if err := vmInstance.Put(obj, "lastIndex", vm.IntegerValue(0), true); err != nil {
					return vm.Undefined, err
				}
			} else {
				m, err := re.MatchAt(str, 0)
				if err != nil {
					return vm.Undefined, matchFailed(vmInstance, err)
				}
				if m != nil {
					matches = append(matches, m)
				}
			}
		}
	}
	if matches == nil && !isRegExp(searchValue) {
		search, err := vmInstance.ToString(searchValue)
		if err != nil {
			return vm.Undefined, err
		}
		if i := strings.Index(str, search); i >= 0 {
			index := vm.UTF16Length(str[:i])
			matches = append(matches, &vm.RegExpMatch{
				Index:  index,
				Groups: []vm.RegExpGroup{{Text: search, Index: index, Matched: true}},
			})
		}
	}

	var template string
	if !replaceValue.IsCallable() {
		if template, err = vmInstance.ToString(replaceValue); err != nil {
			return vm.Undefined, err
		}
	}

	units := vm.ToUTF16(str)
	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(vm.FromUTF16(units[last:m.Index]))
		if replaceValue.IsCallable() {
			callArgs := make([]vm.Value, 0, len(m.Groups)+2)
			for _, g := range m.Groups {
				if g.Matched {
					callArgs = append(callArgs, vm.NewString(g.Text))
				} else {
					callArgs = append(callArgs, vm.Undefined)
				}
			}
			callArgs = append(callArgs, vm.IntegerValue(int64(m.Index)), vm.NewString(str))
			result, err := vmInstance.Call(replaceValue, vm.Undefined, callArgs)
			if err != nil {
				return vm.Undefined, err
			}
			s, err := vmInstance.ToString(result)
			if err != nil {
				return vm.Undefined, err
			}
			b.WriteString(s)
		} else {
			b.WriteString(expandReplacement(template, units, m))
		}
		last = m.End()
	}
	b.WriteString(vm.FromUTF16(units[last:]))
	return vm.NewString(b.String()), nil
}

func isRegExp(v vm.Value) bool {
	_, ok := vm.RegExpData(v.AsObject())
	return ok
}

// expandReplacement substitutes $$, $&, $`, $' and $n / $nn in template.
func expandReplacement(template string, input []uint16, m *vm.RegExpMatch) string {
	if !strings.ContainsRune(template, '$') {
		return template
	}
	t := []rune(template)
	captures := len(m.Groups) - 1
	var b strings.Builder
	for i := 0; i < len(t); i++ {
		if t[i] != '$' || i+1 == len(t) {
			b.WriteRune(t[i])
			continue
		}
		switch c := t[i+1]; {
		case c == '$':
			b.WriteRune('$')
			i++
		case c == '&':
			b.WriteString(m.Groups[0].Text)
			i++
		case c == '`':
			b.WriteString(vm.FromUTF16(input[:m.Index]))
			i++
		case c == '\'':
			b.WriteString(vm.FromUTF16(input[m.End():]))
			i++
		case c >= '0' && c <= '9':
			n, width := int(c-'0'), 1
			if i+2 < len(t) && t[i+2] >= '0' && t[i+2] <= '9' {
				if nn := n*10 + int(t[i+2]-'0'); nn >= 1 && nn <= captures {
					n, width = nn, 2
				}
			}
			if n < 1 || n > captures {
				b.WriteRune('$')
				continue
			}
			if g := m.Groups[n]; g.Matched {
				b.WriteString(g.Text)
			}
			i += width
		default:
			b.WriteRune('$')
		}
	}
	return b.String()
}

func stringSplit(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
	str, err := thisString(vmInstance, this, "String.prototype.split")
	if err != nil {
		return vm.Undefined, err
	}
	separator := argAt(args, 0)
	limit := uint32(math.MaxUint32)
	if l := argAt(args, 1); !l.IsUndefined() {
		n, err := vmInstance.ToNumber(l)
		if err != nil {
			return vm.Undefined, err
		}
		limit = vm.ToUint32(n)
	}

	var parts []vm.Value
	if obj := separator.AsObject(); obj != nil {
		if re, ok := vm.RegExpData(obj); ok {
			if parts, err = splitRegExp(vmInstance, re, str, limit); err != nil {
				return vm.Undefined, err
			}
			return vm.ObjectValue(vmInstance.NewArray(parts...)), nil
		}
	}

	if limit == 0 {
		return vm.ObjectValue(vmInstance.NewArray()), nil
	}
	if separator.IsUndefined() {
		return vm.ObjectValue(newStringArray(vmInstance, []string{str})), nil
	}
	sep, err := vmInstance.ToString(separator)
	if err != nil {
		return vm.Undefined, err
	}
	var pieces []string
	if sep == "" {
		for _, u := range vm.ToUTF16(str) {
			pieces = append(pieces, vm.FromUTF16([]uint16{u}))
		}
	} else {
		pieces = strings.Split(str, sep)
	}
	if uint64(len(pieces)) > uint64(limit) {
		pieces = pieces[:limit]
	}
	return vm.ObjectValue(newStringArray(vmInstance, pieces)), nil
}

// splitRegExp follows the ES5 split algorithm: an empty match at the end of
// the previous piece never splits, and capture groups are spliced into the
// result.
func splitRegExp(vmInstance *vm.VM, re *vm.RegExpObject, str string, limit uint32) ([]vm.Value, error) {
	parts := []vm.Value{}
	if limit == 0 {
		return parts, nil
	}
	units := vm.ToUTF16(str)
	size := len(units)
	if size == 0 {
		m, err := re.MatchAt(str, 0)
		if err != nil {
			return nil, matchFailed(vmInstance, err)
		}
		if m != nil && m.Index == 0 {
			return parts, nil
		}
		return []vm.Value{vm.NewString(str)}, nil
	}

	full := func() bool { return uint64(len(parts)) >= uint64(limit) }
	p := 0
	for q := p; q < size; {
		m, err := re.MatchAt(str, q)
		if err != nil {
			return nil, matchFailed(vmInstance, err)
		}
		if m == nil || m.Index >= size {
			break
		}
		q = m.Index
		e := m.End()
		if e == p {
			q++
			continue
		}
		parts = append(parts, vm.NewString(vm.FromUTF16(units[p:q])))
		if full() {
			return parts, nil
		}
		p = e
		for _, g := range m.Groups[1:] {
			if g.Matched {
				parts = append(parts, vm.NewString(g.Text))
			} else {
				parts = append(parts, vm.Undefined)
			}
			if full() {
				return parts, nil
			}
		}
		q = p
	}
	return append(parts, vm.NewString(vm.FromUTF16(units[p:]))), nil
}
