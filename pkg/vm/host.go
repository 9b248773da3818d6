package vm

import (
	"fmt"
	"reflect"
	"sort"
)

// HostObject is implemented by embedder values that want to appear as
// script objects. Every property a host object reports is an enumerable,
// writable, configurable data property.
type HostObject interface {
	HostGet(name string) (Value, bool)
	HostPut(name string, v Value) bool
	HostKeys() []string
}

var hostKind *objectKind

func init() {
	hostKind = &objectKind{
		getOwnProperty:    hostGetOwnProperty,
		defineOwnProperty: hostDefineOwnProperty,
		delete:            hostDelete,
		ownKeys:           hostOwnKeys,
	}
}

// NewHostObject wraps h in a Host class object inheriting from Object.prototype.
func (vm *VM) NewHostObject(h HostObject) *Object {
	o := newObjectOfClass(ClassHost, vm.realm.ObjectPrototype)
	o.kind = hostKind
	o.internal = h
	return o
}

func hostGetOwnProperty(o *Object, name string) (PropertyDescriptor, bool) {
	if v, ok := o.internal.(HostObject).HostGet(name); ok {
		return NewDataDescriptor(v, AttrAll), true
	}
	return PropertyDescriptor{}, false
}

func hostDefineOwnProperty(vm *VM, o *Object, name string, desc PropertyFragment, throw bool) (bool, error) {
	if desc.IsAccessor() || desc.Has(HasWritable) && !desc.Writable ||
		desc.Has(HasEnumerable) && !desc.Enumerable || desc.Has(HasConfigurable) && !desc.Configurable {
		return vm.reject(throw, "Cannot redefine property %s of a host object", name)
	}
	if !desc.Has(HasValue) {
		return true, nil
	}
	if !o.internal.(HostObject).HostPut(name, desc.Value) {
		return vm.reject(throw, "Host object rejected property %s", name)
	}
	return true, nil
}

func hostDelete(vm *VM, o *Object, name string, throw bool) (bool, error) {
	if _, ok := o.internal.(HostObject).HostGet(name); !ok {
		return true, nil
	}
	return vm.reject(throw, "Cannot delete property '%s' of a host object", name)
}

func hostOwnKeys(o *Object) []string {
	return o.internal.(HostObject).HostKeys()
}

// ToValue normalizes a Go value into the object model.
func (vm *VM) ToValue(x interface{}) (Value, error) {
	switch v := x.(type) {
	case nil:
		return Null, nil
	case Value:
		return v, nil
	case *Object:
		return ObjectValue(v), nil
	case HostObject:
		return ObjectValue(vm.NewHostObject(v)), nil
	case bool:
		return BooleanValue(v), nil
	case string:
		return NewString(v), nil
	case float64:
		return NumberValue(v), nil
	case float32:
		return NumberValue(float64(v)), nil
	case int:
		return IntegerValue(int64(v)), nil
	case int64:
		return IntegerValue(v), nil
	case func(args ...Value) Value:
		return ObjectValue(vm.NewNativeFunction("", 0, func(vm *VM, this Value, args []Value) (Value, error) {
			return v(args...), nil
		})), nil
	case NativeFunc:
		return ObjectValue(vm.NewNativeFunction("", 0, v)), nil
	case func(*VM, Value, []Value) (Value, error):
		return ObjectValue(vm.NewNativeFunction("", 0, v)), nil
	case []interface{}:
		arr := vm.NewArrayWithLength(0)
		for i, elem := range v {
			ev, err := vm.ToValue(elem)
			if err != nil {
				return Undefined, fmt.Errorf("index %d: %w", i, err)
			}
			arr.store().Set(IndexKey(uint32(i)), NewDataDescriptor(ev, AttrAll))
		}
		arr.setArrayLength(uint32(len(v)))
		return ObjectValue(arr), nil
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := vm.NewPlainObject()
		for _, k := range keys {
			ev, err := vm.ToValue(v[k])
			if err != nil {
				return Undefined, fmt.Errorf("key %q: %w", k, err)
			}
			obj.SetOwn(k, ev)
		}
		return ObjectValue(obj), nil
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return NumberValue(float64(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return NumberValue(float64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return NumberValue(rv.Float()), nil
	case reflect.String:
		return NewString(rv.String()), nil
	case reflect.Bool:
		return BooleanValue(rv.Bool()), nil
	case reflect.Slice, reflect.Array:
		n := rv.Len()
		elems := make([]interface{}, n)
		for i := 0; i < n; i++ {
			elems[i] = rv.Index(i).Interface()
		}
		return vm.ToValue(elems)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		m := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return vm.ToValue(m)
	case reflect.Ptr:
		if rv.IsNil() {
			return Null, nil
		}
	}
	return Undefined, fmt.Errorf("vm: cannot convert host value of type %T", x)
}

// Export exposes a value to Go: primitives become bool, float64 or string,
// arrays become []interface{}, functions become
// func(this interface{}, args ...interface{}) (interface{}, error), host
// objects return the wrapped HostObject and other objects become
// map[string]interface{} of their enumerable own properties. Cyclic
// structures map back to the same Go slice or map.
func (vm *VM) Export(v Value) interface{} {
	return vm.export(v, make(map[uintptr]interface{}))
}

func (vm *VM) export(v Value, seen map[uintptr]interface{}) interface{} {
	switch v.typ {
	case TypeUndefined, TypeNull:
		return nil
	case TypeBoolean:
		return v.num != 0
	case TypeNumber:
		return v.num
	case TypeString:
		return v.str
	}
	o := v.obj
	if done, ok := seen[o.id]; ok {
		return done
	}
	switch {
	case o.IsCallable():
		return func(this interface{}, args ...interface{}) (interface{}, error) {
			tv, err := vm.ToValue(this)
			if err != nil {
				return nil, err
			}
			argv := make([]Value, len(args))
			for i, a := range args {
				if argv[i], err = vm.ToValue(a); err != nil {
					return nil, err
				}
			}
			res, err := vm.Call(v, tv, argv)
			if err != nil {
				return nil, err
			}
			return vm.Export(res), nil
		}
	case o.class == ClassHost:
		return o.internal
	case o.primitive != nil:
		return vm.export(*o.primitive, seen)
	case o.class == ClassArray:
		n := o.ArrayLength()
		out := make([]interface{}, n)
		seen[o.id] = out
		for i := uint32(0); i < n; i++ {
			if d, ok := o.GetOwnProperty(IndexKey(i)); ok && d.IsData() {
				out[i] = vm.export(d.Value, seen)
			}
		}
		return out
	}
	out := make(map[string]interface{})
	seen[o.id] = out
	for _, k := range o.OwnKeys() {
		if d, ok := o.GetOwnProperty(k); ok && d.IsData() {
			out[k] = vm.export(d.Value, seen)
		}
	}
	return out
}
