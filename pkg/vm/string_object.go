package vm

import "unicode/utf16"

// Strings are stored as UTF-8 but measured and indexed in UTF-16 code
// units, matching the script-visible length and charAt semantics.

var stringKind *objectKind

func init() {
	stringKind = &objectKind{
		getOwnProperty:    stringGetOwnProperty,
		defineOwnProperty: ordinaryDefineOwnProperty,
		delete:            stringDelete,
		ownKeys:           stringOwnKeys,
	}
}

func newStringObject(proto *Object, s string) *Object {
	o := newPrimitiveObject(ClassString, proto, NewString(s))
	o.kind = stringKind
	o.store().Set("length", NewDataDescriptor(IntegerValue(int64(utf16Length(s))), AttrNone))
	return o
}

func stringGetOwnProperty(o *Object, name string) (PropertyDescriptor, bool) {
	if idx, ok := arrayIndex(name); ok {
		if ch, ok := utf16At(o.primitive.str, int(idx)); ok {
			return NewDataDescriptor(NewString(ch), AttrEnumerable), true
		}
	}
	return o.props.Get(name)
}

func stringDelete(vm *VM, o *Object, name string, throw bool) (bool, error) {
	if idx, ok := arrayIndex(name); ok && int(idx) < utf16Length(o.primitive.str) {
		return vm.reject(throw, "Cannot delete property '%s' of [object String]", name)
	}
	return ordinaryDelete(vm, o, name, throw)
}

func stringOwnKeys(o *Object) []string {
	n := utf16Length(o.primitive.str)
	keys := make([]string, 0, n+o.props.Len())
	for i := 0; i < n; i++ {
		keys = append(keys, IndexKey(uint32(i)))
	}
	for _, k := range o.props.Keys() {
		if idx, ok := arrayIndex(k); ok && int(idx) < n {
			continue
		}
		keys = append(keys, k)
	}
	return keys
}

// utf16Length returns the number of UTF-16 code units in s.
func utf16Length(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// UTF16Length is the script-visible length of s.
func UTF16Length(s string) int { return utf16Length(s) }

// ToUTF16 converts s to UTF-16 code units.
func ToUTF16(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

// FromUTF16 converts code units back to a string. Unpaired surrogates
// become U+FFFD.
func FromUTF16(units []uint16) string {
	return string(utf16.Decode(units))
}

// utf16At returns the code unit at index i of s as a string.
func utf16At(s string, i int) (string, bool) {
	if i < 0 {
		return "", false
	}
	pos := 0
	for _, r := range s {
		if r >= 0x10000 {
			if i == pos || i == pos+1 {
				hi, lo := utf16.EncodeRune(r)
				if i == pos {
					return FromUTF16([]uint16{uint16(hi)}), true
				}
				return FromUTF16([]uint16{uint16(lo)}), true
			}
			pos += 2
			continue
		}
		if i == pos {
			return string(r), true
		}
		pos++
	}
	return "", false
}
