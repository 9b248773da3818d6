package vm

import "sync/atomic"

// Class is the internal class tag reported by Object.prototype.toString.
type Class string

const (
	ClassObject    Class = "Object"
	ClassFunction  Class = "Function"
	ClassArray     Class = "Array"
	ClassArguments Class = "Arguments"
	ClassError     Class = "Error"
	ClassBoolean   Class = "Boolean"
	ClassNumber    Class = "Number"
	ClassString    Class = "String"
	ClassRegExp    Class = "RegExp"
	ClassJSON      Class = "JSON"
	ClassHost      Class = "Host"
)

// objectKind holds the behaviour hooks for an exotic object kind. Ordinary
// objects use ordinaryKind.
type objectKind struct {
	getOwnProperty    func(o *Object, name string) (PropertyDescriptor, bool)
	defineOwnProperty func(vm *VM, o *Object, name string, desc PropertyFragment, throw bool) (bool, error)
	delete            func(vm *VM, o *Object, name string, throw bool) (bool, error)
	ownKeys           func(o *Object) []string
}

var ordinaryKind *objectKind

// The hook tables are assigned in init: the hooks allocate error objects,
// which reference the tables.
func init() {
	ordinaryKind = &objectKind{
		getOwnProperty:    ordinaryGetOwnProperty,
		defineOwnProperty: ordinaryDefineOwnProperty,
		delete:            ordinaryDelete,
		ownKeys:           ordinaryOwnKeys,
	}
}

var objectIDCounter uintptr

func nextObjectID() uintptr {
	return atomic.AddUintptr(&objectIDCounter, 1)
}

// Object is a handle to a script object. Handles compare by identity.
type Object struct {
	id         uintptr
	class      Class
	prototype  *Object
	extensible bool
	props      *PropertyStore
	kind       *objectKind

	fn        callable    // non-nil for function objects
	primitive *Value      // Boolean, Number and String wrappers
	internal  interface{} // kind-specific payload (arguments map, regexp, host object)
}

// NewObject allocates an ordinary extensible object with the given prototype.
func NewObject(proto *Object) *Object {
	return newObjectOfClass(ClassObject, proto)
}

// NewObjectOfClass allocates an ordinary object reporting the given class.
func NewObjectOfClass(class Class, proto *Object) *Object {
	return newObjectOfClass(class, proto)
}

func newObjectOfClass(class Class, proto *Object) *Object {
	return &Object{
		id:         nextObjectID(),
		class:      class,
		prototype:  proto,
		extensible: true,
		kind:       ordinaryKind,
	}
}

func (o *Object) ID() uintptr { return o.id }
func (o *Object) Class() Class { return o.class }
func (o *Object) Prototype() *Object { return o.prototype }
func (o *Object) Extensible() bool { return o.extensible }
func (o *Object) IsCallable() bool { return o != nil && o.fn != nil }

// IsConstructor reports whether the object can be used with new.
func (o *Object) IsConstructor() bool {
	return o != nil && o.fn != nil && o.fn.isConstructor()
}

// PrimitiveValue returns the wrapped primitive of a Boolean, Number or
// String object.
func (o *Object) PrimitiveValue() (Value, bool) {
	if o.primitive == nil {
		return Undefined, false
	}
	return *o.primitive, true
}

// Internal returns the kind-specific payload.
func (o *Object) Internal() interface{} { return o.internal }

func (o *Object) store() *PropertyStore {
	if o.props == nil {
		o.props = NewPropertyStore()
	}
	return o.props
}

// GetOwnProperty returns the own property called name, if any.
func (o *Object) GetOwnProperty(name string) (PropertyDescriptor, bool) {
	return o.kind.getOwnProperty(o, name)
}

func (o *Object) HasOwnProperty(name string) bool {
	_, ok := o.kind.getOwnProperty(o, name)
	return ok
}

// OwnPropertyNames returns every own key, enumerable or not.
func (o *Object) OwnPropertyNames() []string {
	return o.kind.ownKeys(o)
}

// OwnKeys returns the own enumerable keys in enumeration order.
func (o *Object) OwnKeys() []string {
	all := o.kind.ownKeys(o)
	out := all[:0:0]
	for _, k := range all {
		if d, ok := o.kind.getOwnProperty(o, k); ok && d.Enumerable {
			out = append(out, k)
		}
	}
	return out
}

// SetInternal installs a writable, configurable, non-enumerable data
// property without running any checks. It is meant for setting up builtins.
func (o *Object) SetInternal(name string, v Value) {
	o.store().Set(name, NewDataDescriptor(v, AttrInternal))
}

// SetOwn installs an enumerable, writable, configurable data property
// without running any checks.
func (o *Object) SetOwn(name string, v Value) {
	o.store().Set(name, NewDataDescriptor(v, AttrAll))
}

// DefineDirect installs a complete descriptor without running any checks.
func (o *Object) DefineDirect(name string, d PropertyDescriptor) {
	o.store().Set(name, d)
}

// functionName returns the own "name" data property of a function, if it is a string.
func (o *Object) functionName() string {
	if d, ok := o.GetOwnProperty("name"); ok && d.IsData() && d.Value.IsString() {
		return d.Value.str
	}
	return ""
}

func ordinaryGetOwnProperty(o *Object, name string) (PropertyDescriptor, bool) {
	return o.props.Get(name)
}

func ordinaryOwnKeys(o *Object) []string {
	return o.props.Keys()
}

// ordinaryDefineOwnProperty reconciles desc with the current own property.
// Every rejection returns false, or a TypeError when throw is set.
func ordinaryDefineOwnProperty(vm *VM, o *Object, name string, desc PropertyFragment, throw bool) (bool, error) {
	if desc.IsAccessor() && desc.IsData() {
		return vm.reject(true, "Invalid property descriptor. Cannot both specify accessors and a value or writable attribute")
	}
	current, exists := o.kind.getOwnProperty(o, name)
	if !exists {
		if !o.extensible {
			return vm.reject(throw, "Cannot define property %s, object is not extensible", name)
		}
		o.store().Set(name, desc.descriptor())
		return true, nil
	}
	if desc.IsEmpty() || current.describedBy(desc) {
		return true, nil
	}
	if !current.Configurable {
		if desc.Has(HasConfigurable) && desc.Configurable {
			return vm.reject(throw, "Cannot redefine property: %s", name)
		}
		if desc.Has(HasEnumerable) && desc.Enumerable != current.Enumerable {
			return vm.reject(throw, "Cannot redefine property: %s", name)
		}
	}

	switch {
	case desc.IsGeneric():
	case current.IsData() != desc.IsData():
		if !current.Configurable {
			return vm.reject(throw, "Cannot redefine property: %s", name)
		}
		// Switching kinds keeps enumerable/configurable and resets the rest.
		if current.IsData() {
			current = PropertyDescriptor{Kind: AccessorProperty, Enumerable: current.Enumerable, Configurable: current.Configurable}
		} else {
			current = PropertyDescriptor{Kind: DataProperty, Enumerable: current.Enumerable, Configurable: current.Configurable}
		}
	case current.IsData():
		if !current.Configurable && !current.Writable {
			if desc.Has(HasWritable) && desc.Writable {
				return vm.reject(throw, "Cannot redefine property: %s", name)
			}
			if desc.Has(HasValue) && !SameValue(desc.Value, current.Value) {
				return vm.reject(throw, "Cannot redefine property: %s", name)
			}
		}
	default:
		if !current.Configurable {
			if desc.Has(HasGet) && desc.Get != current.Get {
				return vm.reject(throw, "Cannot redefine property: %s", name)
			}
			if desc.Has(HasSet) && desc.Set != current.Set {
				return vm.reject(throw, "Cannot redefine property: %s", name)
			}
		}
	}

	o.store().Set(name, current.merge(desc))
	return true, nil
}

func ordinaryDelete(vm *VM, o *Object, name string, throw bool) (bool, error) {
	d, ok := o.props.Get(name)
	if !ok {
		return true, nil
	}
	if !d.Configurable {
		return vm.reject(throw, "Cannot delete property '%s' of %s", name, ObjectValue(o).ToString())
	}
	o.props.Delete(name)
	return true, nil
}
