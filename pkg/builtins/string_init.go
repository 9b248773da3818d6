package builtins

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"jscore/pkg/vm"
)

// StringInitializer implements the String builtin
type StringInitializer struct{}

func (s *StringInitializer) Name() string {
	return "String"
}

func (s *StringInitializer) Priority() int {
	return PriorityString
}

func (s *StringInitializer) InitRuntime(ctx *RuntimeContext) error {
	vmInstance := ctx.VM
	stringProto := ctx.Realm.StringPrototype

	// Add prototype methods
	defineMethod(vmInstance, stringProto, "toString", 0, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		str, err := thisStringValue(vmInstance, this, "toString")
		return vm.NewString(str), err
	})

	defineMethod(vmInstance, stringProto, "valueOf", 0, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		str, err := thisStringValue(vmInstance, this, "valueOf")
		return vm.NewString(str), err
	})

	defineMethod(vmInstance, stringProto, "charAt", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		units, pos, err := unitAt(vmInstance, this, args, "charAt")
		if err != nil || pos < 0 {
			return vm.NewString(""), err
		}
		return vm.NewString(vm.FromUTF16(units[pos : pos+1])), nil
	})

	defineMethod(vmInstance, stringProto, "charCodeAt", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		units, pos, err := unitAt(vmInstance, this, args, "charCodeAt")
		if err != nil || pos < 0 {
			return vm.NaN, err
		}
		return vm.IntegerValue(int64(units[pos])), nil
	})

	defineMethod(vmInstance, stringProto, "indexOf", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		str, err := thisString(vmInstance, this, "String.prototype.indexOf")
		if err != nil {
			return vm.Undefined, err
		}
		search, err := vmInstance.ToString(argAt(args, 0))
		if err != nil {
			return vm.Undefined, err
		}
		pos, err := integerArg(vmInstance, args, 1)
		if err != nil {
			return vm.Undefined, err
		}
		units, needle := vm.ToUTF16(str), vm.ToUTF16(search)
		for k := clampIndex(pos, len(units)); k+len(needle) <= len(units); k++ {
			if unitsEqual(units[k:k+len(needle)], needle) {
				return vm.IntegerValue(int64(k)), nil
			}
		}
		return vm.IntegerValue(-1), nil
	})

	defineMethod(vmInstance, stringProto, "lastIndexOf", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		str, err := thisString(vmInstance, this, "String.prototype.lastIndexOf")
		if err != nil {
			return vm.Undefined, err
		}
		search, err := vmInstance.ToString(argAt(args, 0))
		if err != nil {
			return vm.Undefined, err
		}
		pos, err := vmInstance.ToNumber(argAt(args, 1))
		if err != nil {
			return vm.Undefined, err
		}
		if math.IsNaN(pos) {
			pos = math.Inf(1)
		}
		units, needle := vm.ToUTF16(str), vm.ToUTF16(search)
		start := clampIndex(vm.ToInteger(pos), len(units))
		if start > len(units)-len(needle) {
			start = len(units) - len(needle)
		}
		for k := start; k >= 0; k-- {
			if unitsEqual(units[k:k+len(needle)], needle) {
				return vm.IntegerValue(int64(k)), nil
			}
		}
		return vm.IntegerValue(-1), nil
	})

	defineMethod(vmInstance, stringProto, "slice", 2, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		str, err := thisString(vmInstance, this, "String.prototype.slice")
		if err != nil {
			return vm.Undefined, err
		}
		units := vm.ToUTF16(str)
		start, err := integerArg(vmInstance, args, 0)
		if err != nil {
			return vm.Undefined, err
		}
		end := float64(len(units))
		if e := argAt(args, 1); !e.IsUndefined() {
			if end, err = integerArg(vmInstance, args, 1); err != nil {
				return vm.Undefined, err
			}
		}
		from, to := relativeIndex(start, len(units)), relativeIndex(end, len(units))
		if from >= to {
			return vm.NewString(""), nil
		}
		return vm.NewString(vm.FromUTF16(units[from:to])), nil
	})

	defineMethod(vmInstance, stringProto, "substring", 2, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		str, err := thisString(vmInstance, this, "String.prototype.substring")
		if err != nil {
			return vm.Undefined, err
		}
		units := vm.ToUTF16(str)
		start, err := integerArg(vmInstance, args, 0)
		if err != nil {
			return vm.Undefined, err
		}
		end := float64(len(units))
		if e := argAt(args, 1); !e.IsUndefined() {
			if end, err = integerArg(vmInstance, args, 1); err != nil {
				return vm.Undefined, err
			}
		}
		from, to := clampIndex(start, len(units)), clampIndex(end, len(units))
		if from > to {
			from, to = to, from
		}
		return vm.NewString(vm.FromUTF16(units[from:to])), nil
	})

	defineMethod(vmInstance, stringProto, "trim", 0, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		str, err := thisString(vmInstance, this, "String.prototype.trim")
		if err != nil {
			return vm.Undefined, err
		}
		return vm.NewString(strings.TrimFunc(str, vm.IsWhitespace)), nil
	})

	defineMethod(vmInstance, stringProto, "concat", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		str, err := thisString(vmInstance, this, "String.prototype.concat")
		if err != nil {
			return vm.Undefined, err
		}
		parts, err := stringArgs(vmInstance, args)
		if err != nil {
			return vm.Undefined, err
		}
		return vm.NewString(str + strings.Join(parts, "")), nil
	})

	// Case mapping
	caseMethod := func(name string, upper, locale bool) {
		defineMethod(vmInstance, stringProto, name, 0, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
			str, err := thisString(vmInstance, this, "String.prototype."+name)
			if err != nil {
				return vm.Undefined, err
			}
			tag := language.Und
			if locale {
				if tag, err = localeArg(vmInstance, args, 0); err != nil {
					return vm.Undefined, err
				}
			}
			if upper {
				return vm.NewString(cases.Upper(tag).String(str)), nil
			}
			return vm.NewString(cases.Lower(tag).String(str)), nil
		})
	}
	caseMethod("toUpperCase", true, false)
	caseMethod("toLowerCase", false, false)
	caseMethod("toLocaleUpperCase", true, true)
	caseMethod("toLocaleLowerCase", false, true)

	defineMethod(vmInstance, stringProto, "localeCompare", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		str, err := thisString(vmInstance, this, "String.prototype.localeCompare")
		if err != nil {
			return vm.Undefined, err
		}
		that, err := vmInstance.ToString(argAt(args, 0))
		if err != nil {
			return vm.Undefined, err
		}
		tag, err := localeArg(vmInstance, args, 1)
		if err != nil {
			return vm.Undefined, err
		}
		return vm.IntegerValue(int64(collate.New(tag).CompareString(str, that))), nil
	})

	defineMethod(vmInstance, stringProto, "normalize", 0, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		str, err := thisString(vmInstance, this, "String.prototype.normalize")
		if err != nil {
			return vm.Undefined, err
		}
		form := "NFC"
		if f := argAt(args, 0); !f.IsUndefined() {
			if form, err = vmInstance.ToString(f); err != nil {
				return vm.Undefined, err
			}
		}
		var nf norm.Form
		switch form {
		case "NFC":
			nf = norm.NFC
		case "NFD":
			nf = norm.NFD
		case "NFKC":
			nf = norm.NFKC
		case "NFKD":
			nf = norm.NFKD
		default:
			return vm.Undefined, vmInstance.NewRangeError("The normalization form should be one of NFC, NFD, NFKC, NFKD.")
		}
		return vm.NewString(nf.String(str)), nil
	})

	defineMethod(vmInstance, stringProto, "match", 1, stringMatch)
	defineMethod(vmInstance, stringProto, "search", 1, stringSearch)
	defineMethod(vmInstance, stringProto, "replace", 2, stringReplace)
	defineMethod(vmInstance, stringProto, "split", 2, stringSplit)

	// String(value) converts; new String(value) boxes the conversion
	toString := func(vmInstance *vm.VM, args []vm.Value) (string, error) {
		if len(args) == 0 {
			return "", nil
		}
		return vmInstance.ToString(args[0])
	}
	stringCtor := vmInstance.NewNativeConstructor("String", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		str, err := toString(vmInstance, args)
		return vm.NewString(str), err
	}, func(vmInstance *vm.VM, args []vm.Value) (vm.Value, error) {
		str, err := toString(vmInstance, args)
		if err != nil {
			return vm.Undefined, err
		}
		obj, err := vmInstance.ToObject(vm.NewString(str))
		return vm.ObjectValue(obj), err
	}, stringProto)

	defineMethod(vmInstance, stringCtor, "fromCharCode", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		units := make([]uint16, len(args))
		for i, arg := range args {
			n, err := vmInstance.ToNumber(arg)
			if err != nil {
				return vm.Undefined, err
			}
			units[i] = vm.ToUint16(n)
		}
		return vm.NewString(vm.FromUTF16(units)), nil
	})

	ctx.Realm.SetConstructor("String", stringCtor)
	return ctx.DefineGlobal("String", vm.ObjectValue(stringCtor))
}

// thisString applies the generic-method receiver check and ToString.
func thisString(vmInstance *vm.VM, this vm.Value, method string) (string, error) {
	if this.IsNullish() {
		return "", vmInstance.NewTypeError("%s called on null or undefined", method)
	}
	return vmInstance.ToString(this)
}

// thisStringValue unwraps a string receiver or a String wrapper.
func thisStringValue(vmInstance *vm.VM, this vm.Value, method string) (string, error) {
	if this.IsString() {
		return this.AsString(), nil
	}
	if obj := this.AsObject(); obj != nil && obj.Class() == vm.ClassString {
		if p, ok := obj.PrimitiveValue(); ok {
			return p.AsString(), nil
		}
	}
	return "", vmInstance.NewTypeError("String.prototype.%s requires that 'this' be a String", method)
}

// unitAt resolves the receiver and position argument of charAt and
// charCodeAt. pos is -1 when out of range.
func unitAt(vmInstance *vm.VM, this vm.Value, args []vm.Value, method string) ([]uint16, int, error) {
	str, err := thisString(vmInstance, this, "String.prototype."+method)
	if err != nil {
		return nil, -1, err
	}
	pos, err := integerArg(vmInstance, args, 0)
	if err != nil {
		return nil, -1, err
	}
	units := vm.ToUTF16(str)
	if pos < 0 || pos >= float64(len(units)) {
		return units, -1, nil
	}
	return units, int(pos), nil
}

func unitsEqual(a, b []uint16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// localeArg parses an optional BCP 47 tag. Undefined selects the root locale.
func localeArg(vmInstance *vm.VM, args []vm.Value, i int) (language.Tag, error) {
	v := argAt(args, i)
	if v.IsUndefined() {
		return language.Und, nil
	}
	s, err := vmInstance.ToString(v)
	if err != nil {
		return language.Und, err
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, vmInstance.NewRangeError("Incorrect locale information provided")
	}
	return tag, nil
}
