package vm

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type ValueType uint8

const (
	TypeUndefined ValueType = iota
	TypeNull
	TypeBoolean
	TypeNumber
	TypeString
	TypeObject
)

// String returns a human-readable name for the ValueType
func (vt ValueType) String() string {
	switch vt {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a script value. The zero Value is Undefined.
// Booleans are stored in num as 0 or 1.
type Value struct {
	typ ValueType
	num float64
	str string
	obj *Object
}

var (
	Undefined = Value{typ: TypeUndefined}
	Null      = Value{typ: TypeNull}
	True      = Value{typ: TypeBoolean, num: 1}
	False     = Value{typ: TypeBoolean, num: 0}
	NaN       = Value{typ: TypeNumber, num: math.NaN()}
	Infinity  = Value{typ: TypeNumber, num: math.Inf(1)}
)

func NumberValue(value float64) Value {
	return Value{typ: TypeNumber, num: value}
}

func IntegerValue(value int64) Value {
	return Value{typ: TypeNumber, num: float64(value)}
}

func BooleanValue(value bool) Value {
	if value {
		return True
	}
	return False
}

func NewString(value string) Value {
	return Value{typ: TypeString, str: value}
}

// ObjectValue wraps an object handle. A nil handle yields Null.
func ObjectValue(o *Object) Value {
	if o == nil {
		return Null
	}
	return Value{typ: TypeObject, obj: o}
}

func (v Value) Type() ValueType { return v.typ }

func (v Value) TypeName() string { return v.typ.String() }

func (v Value) IsUndefined() bool { return v.typ == TypeUndefined }
func (v Value) IsNull() bool { return v.typ == TypeNull }
func (v Value) IsNullish() bool { return v.typ == TypeUndefined || v.typ == TypeNull }
func (v Value) IsBoolean() bool { return v.typ == TypeBoolean }
func (v Value) IsNumber() bool { return v.typ == TypeNumber }
func (v Value) IsString() bool { return v.typ == TypeString }
func (v Value) IsObject() bool { return v.typ == TypeObject }
func (v Value) IsPrimitive() bool { return v.typ != TypeObject }

// IsCallable reports whether v is an object with a call behaviour.
func (v Value) IsCallable() bool {
	return v.typ == TypeObject && v.obj.IsCallable()
}

func (v Value) AsBoolean() bool {
	if v.typ != TypeBoolean {
		panic("value is not a boolean")
	}
	return v.num != 0
}

func (v Value) AsFloat() float64 {
	if v.typ != TypeNumber {
		panic("value is not a number")
	}
	return v.num
}

func (v Value) AsString() string {
	if v.typ != TypeString {
		panic("value is not a string")
	}
	return v.str
}

// AsObject returns the object handle, or nil for non-objects.
func (v Value) AsObject() *Object {
	if v.typ != TypeObject {
		return nil
	}
	return v.obj
}

// ToBoolean implements the ToBoolean conversion. It never fails.
func (v Value) ToBoolean() bool {
	switch v.typ {
	case TypeBoolean:
		return v.num != 0
	case TypeNumber:
		return !(v.num == 0 || math.IsNaN(v.num))
	case TypeString:
		return v.str != ""
	case TypeObject:
		return true
	default:
		return false
	}
}

// ToFloat converts a primitive to a number. Objects convert through their
// primitive value when they wrap one and to NaN otherwise; use VM.ToNumber for
// the full valueOf/toString protocol.
func (v Value) ToFloat() float64 {
	switch v.typ {
	case TypeNumber:
		return v.num
	case TypeBoolean:
		return v.num
	case TypeString:
		return parseStringToNumber(v.str)
	case TypeNull:
		return 0
	case TypeObject:
		if p, ok := v.obj.PrimitiveValue(); ok {
			return p.ToFloat()
		}
		return math.NaN()
	default:
		return math.NaN()
	}
}

// ToString converts a primitive to its string form. Objects render as
// "[object Class]" unless they wrap a primitive; use VM.ToString for the full
// conversion protocol.
func (v Value) ToString() string {
	switch v.typ {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		if v.num != 0 {
			return "true"
		}
		return "false"
	case TypeNumber:
		return numberToString(v.num)
	case TypeString:
		return v.str
	case TypeObject:
		if p, ok := v.obj.PrimitiveValue(); ok {
			return p.ToString()
		}
		return "[object " + string(v.obj.Class()) + "]"
	}
	return fmt.Sprintf("<unknown type %d>", v.typ)
}

// ToInteger implements ToInteger: NaN becomes 0, infinities are preserved,
// everything else truncates toward zero.
func ToInteger(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	if math.IsInf(f, 0) || f == 0 {
		return f
	}
	return math.Trunc(f)
}

// ToInt32 implements the ToInt32 modular conversion.
func ToInt32(f float64) int32 {
	return int32(ToUint32(f))
}

// ToUint32 implements the ToUint32 modular conversion.
func ToUint32(f float64) uint32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	f = math.Trunc(f)
	f = math.Mod(f, 4294967296)
	if f < 0 {
		f += 4294967296
	}
	return uint32(f)
}

// ToUint16 implements the ToUint16 modular conversion.
func ToUint16(f float64) uint16 {
	return uint16(ToUint32(f))
}

// TypeOf returns the result of the typeof operator.
func (v Value) TypeOf() string {
	switch v.typ {
	case TypeNull:
		return "object"
	case TypeObject:
		if v.obj.IsCallable() {
			return "function"
		}
		return "object"
	default:
		return v.typ.String()
	}
}

// StrictlyEquals implements the === comparison. NaN !== NaN, +0 === -0.
func (v Value) StrictlyEquals(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case TypeUndefined, TypeNull:
		return true
	case TypeNumber, TypeBoolean:
		return v.num == other.num
	case TypeString:
		return v.str == other.str
	case TypeObject:
		return v.obj == other.obj
	}
	return false
}

// SameValue is the comparison used by property reconciliation: NaN equals
// NaN and +0 differs from -0.
func SameValue(a, b Value) bool {
	if a.typ == TypeNumber && b.typ == TypeNumber {
		if math.IsNaN(a.num) && math.IsNaN(b.num) {
			return true
		}
		if a.num == 0 && b.num == 0 {
			return math.Signbit(a.num) == math.Signbit(b.num)
		}
		return a.num == b.num
	}
	return a.StrictlyEquals(b)
}

// SameValueZero is SameValue except that +0 and -0 are equal.
func SameValueZero(a, b Value) bool {
	if a.typ == TypeNumber && b.typ == TypeNumber {
		if math.IsNaN(a.num) && math.IsNaN(b.num) {
			return true
		}
		return a.num == b.num
	}
	return a.StrictlyEquals(b)
}

// Inspect returns a debug rendering that never invokes script code.
func (v Value) Inspect() string {
	return v.inspectWithDepth(0, map[uintptr]bool{})
}

func (v Value) inspectWithDepth(depth int, seen map[uintptr]bool) string {
	switch v.typ {
	case TypeString:
		if depth > 0 {
			return strconv.Quote(v.str)
		}
		return v.str
	case TypeObject:
		o := v.obj
		if o.IsCallable() {
			if name := o.functionName(); name != "" {
				return "[Function: " + name + "]"
			}
			return "[Function (anonymous)]"
		}
		if p, ok := o.PrimitiveValue(); ok {
			return "[" + string(o.Class()) + ": " + p.inspectWithDepth(1, seen) + "]"
		}
		if seen[o.id] {
			return "[Circular]"
		}
		if depth > 3 {
			return "[" + string(o.Class()) + "]"
		}
		seen[o.id] = true
		defer delete(seen, o.id)

		var b strings.Builder
		if o.Class() == ClassArray {
			b.WriteString("[")
			for i, key := range o.OwnKeys() {
				if i > 0 {
					b.WriteString(", ")
				}
				desc, _ := o.GetOwnProperty(key)
				if _, isIndex := arrayIndex(key); !isIndex {
					b.WriteString(key + ": ")
				}
				b.WriteString(desc.inspect(depth+1, seen))
			}
			b.WriteString("]")
			return b.String()
		}
		keys := o.OwnKeys()
		if len(keys) == 0 {
			return "{}"
		}
		b.WriteString("{ ")
		for i, key := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			desc, _ := o.GetOwnProperty(key)
			b.WriteString(key + ": " + desc.inspect(depth+1, seen))
		}
		b.WriteString(" }")
		return b.String()
	default:
		return v.ToString()
	}
}

func (d PropertyDescriptor) inspect(depth int, seen map[uintptr]bool) string {
	if d.IsAccessor() {
		switch {
		case d.Get != nil && d.Set != nil:
			return "[Getter/Setter]"
		case d.Get != nil:
			return "[Getter]"
		default:
			return "[Setter]"
		}
	}
	return d.Value.inspectWithDepth(depth, seen)
}
