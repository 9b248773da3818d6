package builtins

import (
	"encoding/json"
	goerrors "errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"jscore/pkg/vm"
)

const debugJSON = false

// ParseJSONText builds a value tree from JSON text. Object key order is
// preserved and malformed input raises a SyntaxError.
func ParseJSONText(vmInstance *vm.VM, text string) (vm.Value, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	val, err := parseJSONValue(vmInstance, dec)
	if err != nil {
		return vm.Undefined, jsonSyntaxError(vmInstance, err)
	}
	// Exactly one value is allowed
	if _, err := dec.Token(); err != io.EOF {
		return vm.Undefined, vmInstance.NewSyntaxError("Unexpected token after JSON value at position %d", dec.InputOffset())
	}
	return val, nil
}

func jsonSyntaxError(vmInstance *vm.VM, err error) error {
	if _, ok := vm.AsException(err); ok {
		return err
	}
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return vmInstance.NewSyntaxError("Unexpected end of JSON input")
	}
	return vmInstance.NewSyntaxError("%s", strings.TrimPrefix(err.Error(), "json: "))
}

var errUnexpectedToken = goerrors.New("unexpected JSON token")

// parseJSONValue reads one value from the token stream.
func parseJSONValue(vmInstance *vm.VM, dec *json.Decoder) (vm.Value, error) {
	token, err := dec.Token()
	if err != nil {
		return vm.Undefined, err
	}

	switch t := token.(type) {
	case nil:
		return vm.Null, nil
	case bool:
		return vm.BooleanValue(t), nil
	case json.Number:
		f, err := strconv.ParseFloat(string(t), 64)
		if err != nil && !goerrors.Is(err, strconv.ErrRange) {
			return vm.Undefined, err
		}
		return vm.NumberValue(f), nil
	case string:
		return vm.NewString(t), nil
	case json.Delim:
		switch t {
		case '{':
			obj := vmInstance.NewPlainObject()
			for dec.More() {
				keyToken, err := dec.Token()
				if err != nil {
					return vm.Undefined, err
				}
				key, ok := keyToken.(string)
				if !ok {
					return vm.Undefined, errUnexpectedToken
				}
				value, err := parseJSONValue(vmInstance, dec)
				if err != nil {
					return vm.Undefined, err
				}
				// Duplicate keys: the last one wins, keeping the first position
				obj.SetOwn(key, value)
			}
			if _, err := dec.Token(); err != nil {
				return vm.Undefined, err
			}
			return vm.ObjectValue(obj), nil
		case '[':
			var elements []vm.Value
			for dec.More() {
				elem, err := parseJSONValue(vmInstance, dec)
				if err != nil {
					return vm.Undefined, err
				}
				elements = append(elements, elem)
			}
			if _, err := dec.Token(); err != nil {
				return vm.Undefined, err
			}
			return vm.ObjectValue(vmInstance.NewArray(elements...)), nil
		}
	}
	return vm.Undefined, errUnexpectedToken
}

// Revive applies reviver to every value of a freshly parsed tree, children
// before parents. A reviver result of undefined deletes the property.
func Revive(vmInstance *vm.VM, root vm.Value, reviver vm.Value) (vm.Value, error) {
	holder := vmInstance.NewPlainObject()
	holder.SetOwn("", root)
	return reviveWalk(vmInstance, holder, "", reviver)
}

func reviveWalk(vmInstance *vm.VM, holder *vm.Object, name string, reviver vm.Value) (vm.Value, error) {
	val, err := vmInstance.Get(holder, name)
	if err != nil {
		return vm.Undefined, err
	}
	if obj := val.AsObject(); obj != nil {
		var keys []string
		if vm.IsArray(val) {
			n, err := vmInstance.LengthOf(obj)
			if err != nil {
				return vm.Undefined, err
			}
			keys = make([]string, n)
			for i := range keys {
				keys[i] = vm.IndexKey(uint32(i))
			}
		} else {
			keys = obj.OwnKeys()
		}
		for _, key := range keys {
			element, err := reviveWalk(vmInstance, obj, key, reviver)
			if err != nil {
				return vm.Undefined, err
			}
			if element.IsUndefined() {
				if _, err := vmInstance.Delete(obj, key, false); err != nil {
					return vm.Undefined, err
				}
				continue
			}
			if _, err := vmInstance.DefineOwnProperty(obj, key, vm.DataFragment(element, vm.AttrAll), false); err != nil {
				return vm.Undefined, err
			}
		}
	}
	if debugJSON {
		fmt.Printf("// [JSON] revive %q\n", name)
	}
	return vmInstance.Call(reviver, vm.ObjectValue(holder), []vm.Value{vm.NewString(name), val})
}

// stringifier carries the state of one JSON.stringify call.
type stringifier struct {
	vm           *vm.VM
	replacerFunc vm.Value
	propertyList []string
	hasList      bool
	gap          string
	indent       string
	stack        []*vm.Object
}

// Stringify serializes value. ok is false when the result is undefined.
func Stringify(vmInstance *vm.VM, value, replacer, space vm.Value) (result string, ok bool, err error) {
	s := &stringifier{vm: vmInstance, replacerFunc: vm.Undefined}
	if replacer.IsCallable() {
		s.replacerFunc = replacer
	} else if vm.IsArray(replacer) {
		if err := s.buildPropertyList(replacer.AsObject()); err != nil {
			return "", false, err
		}
	}
	if s.gap, err = gapFromSpace(vmInstance, space); err != nil {
		return "", false, err
	}

	wrapper := vmInstance.NewPlainObject()
	wrapper.SetOwn("", value)
	return s.str("", wrapper)
}

// buildPropertyList collects the allow-list from a replacer array. Strings,
// numbers and their wrappers become keys; repeats keep the first position.
func (s *stringifier) buildPropertyList(arr *vm.Object) error {
	n, err := s.vm.LengthOf(arr)
	if err != nil {
		return err
	}
	s.hasList = true
	s.propertyList = []string{}
	seen := make(map[string]bool)
	for i := uint32(0); i < n; i++ {
		v, err := s.vm.Get(arr, vm.IndexKey(i))
		if err != nil {
			return err
		}
		isKey := v.IsString() || v.IsNumber()
		if obj := v.AsObject(); obj != nil {
			isKey = obj.Class() == vm.ClassString || obj.Class() == vm.ClassNumber
		}
		if !isKey {
			continue
		}
		item, err := s.vm.ToString(v)
		if err != nil {
			return err
		}
		if !seen[item] {
			seen[item] = true
			s.propertyList = append(s.propertyList, item)
		}
	}
	return nil
}

// gapFromSpace computes the indent unit: up to ten spaces or the first ten
// characters of a string.
func gapFromSpace(vmInstance *vm.VM, space vm.Value) (string, error) {
	if obj := space.AsObject(); obj != nil {
		var err error
		switch obj.Class() {
		case vm.ClassNumber:
			var n float64
			if n, err = vmInstance.ToNumber(space); err == nil {
				space = vm.NumberValue(n)
			}
		case vm.ClassString:
			var str string
			if str, err = vmInstance.ToString(space); err == nil {
				space = vm.NewString(str)
			}
		}
		if err != nil {
			return "", err
		}
	}
	switch {
	case space.IsNumber():
		n := math.Min(10, vm.ToInteger(space.AsFloat()))
		if n < 1 {
			return "", nil
		}
		return strings.Repeat(" ", int(n)), nil
	case space.IsString():
		str := space.AsString()
		if utf8.RuneCountInString(str) > 10 {
			str = string([]rune(str)[:10])
		}
		return str, nil
	}
	return "", nil
}

func (s *stringifier) str(key string, holder *vm.Object) (string, bool, error) {
	value, err := s.vm.Get(holder, key)
	if err != nil {
		return "", false, err
	}
	if obj := value.AsObject(); obj != nil {
		toJSON, err := s.vm.Get(obj, "toJSON")
		if err != nil {
			return "", false, err
		}
		if toJSON.IsCallable() {
			if value, err = s.vm.Call(toJSON, value, []vm.Value{vm.NewString(key)}); err != nil {
				return "", false, err
			}
		}
	}
	if s.replacerFunc.IsCallable() {
		if value, err = s.vm.Call(s.replacerFunc, vm.ObjectValue(holder), []vm.Value{vm.NewString(key), value}); err != nil {
			return "", false, err
		}
	}

	// Unwrap boxed primitives
	if obj := value.AsObject(); obj != nil {
		switch obj.Class() {
		case vm.ClassNumber:
			n, err := s.vm.ToNumber(value)
			if err != nil {
				return "", false, err
			}
			value = vm.NumberValue(n)
		case vm.ClassString:
			str, err := s.vm.ToString(value)
			if err != nil {
				return "", false, err
			}
			value = vm.NewString(str)
		case vm.ClassBoolean:
			if p, ok := obj.PrimitiveValue(); ok {
				value = p
			}
		}
	}

	switch {
	case value.IsNull():
		return "null", true, nil
	case value.IsBoolean():
		return value.ToString(), true, nil
	case value.IsString():
		return QuoteJSONString(value.AsString()), true, nil
	case value.IsNumber():
		f := value.AsFloat()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "null", true, nil
		}
		return value.ToString(), true, nil
	case value.IsObject() && !value.IsCallable():
		obj := value.AsObject()
		if vm.IsArray(value) {
			out, err := s.serializeArray(obj)
			return out, err == nil, err
		}
		out, err := s.serializeObject(obj)
		return out, err == nil, err
	}
	return "", false, nil
}

// enter pushes obj on the rendering stack, failing when it is already there.
func (s *stringifier) enter(obj *vm.Object) error {
	for _, o := range s.stack {
		if o == obj {
			return s.vm.NewTypeError("Converting circular structure to JSON")
		}
	}
	s.stack = append(s.stack, obj)
	return nil
}

func (s *stringifier) leave() {
	s.stack = s.stack[:len(s.stack)-1]
}

func (s *stringifier) serializeObject(obj *vm.Object) (string, error) {
	if err := s.enter(obj); err != nil {
		return "", err
	}
	defer s.leave()
	stepback := s.indent
	s.indent += s.gap
	defer func() { s.indent = stepback }()

	keys := s.propertyList
	if !s.hasList {
		keys = obj.OwnKeys()
	}
	var partial []string
	for _, key := range keys {
		member, ok, err := s.str(key, obj)
		if err != nil {
			return "", err
		}
		if !ok {
			continue
		}
		sep := ":"
		if s.gap != "" {
			sep = ": "
		}
		partial = append(partial, QuoteJSONString(key)+sep+member)
	}
	return s.wrap("{", "}", partial, stepback), nil
}

func (s *stringifier) serializeArray(obj *vm.Object) (string, error) {
	if err := s.enter(obj); err != nil {
		return "", err
	}
	defer s.leave()
	stepback := s.indent
	s.indent += s.gap
	defer func() { s.indent = stepback }()

	n, err := s.vm.LengthOf(obj)
	if err != nil {
		return "", err
	}
	partial := make([]string, 0, n)
	for i := uint32(0); i < n; i++ {
		element, ok, err := s.str(vm.IndexKey(i), obj)
		if err != nil {
			return "", err
		}
		if !ok {
			element = "null"
		}
		partial = append(partial, element)
	}
	return s.wrap("[", "]", partial, stepback), nil
}

func (s *stringifier) wrap(open, close string, partial []string, stepback string) string {
	if len(partial) == 0 {
		return open + close
	}
	if s.gap == "" {
		return open + strings.Join(partial, ",") + close
	}
	sep := ",\n" + s.indent
	return open + "\n" + s.indent + strings.Join(partial, sep) + "\n" + stepback + close
}

// QuoteJSONString renders str as a JSON string literal. Only the quote, the
// backslash and control characters are escaped.
func QuoteJSONString(str string) string {
	var b strings.Builder
	b.Grow(len(str) + 2)
	b.WriteByte('"')
	for _, r := range str {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
