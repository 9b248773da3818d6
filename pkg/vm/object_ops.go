package vm

import (
	"fmt"
	"math"

	"github.com/zephyrtronium/contains"
)

const debugProps = false

// findProperty walks o's prototype chain for name and returns the first
// descriptor found along with its holder.
func (vm *VM) findProperty(o *Object, name string) (PropertyDescriptor, *Object, bool, error) {
	for depth := 0; o != nil; depth++ {
		if depth >= vm.opts.MaxPrototypeDepth {
			return PropertyDescriptor{}, nil, false, vm.NewRangeError("Maximum prototype chain depth exceeded while looking up '%s'", name)
		}
		if d, ok := o.kind.getOwnProperty(o, name); ok {
			return d, o, true, nil
		}
		o = o.prototype
	}
	return PropertyDescriptor{}, nil, false, nil
}

// GetOwnProperty returns the own property of o called name.
func (vm *VM) GetOwnProperty(o *Object, name string) (PropertyDescriptor, bool) {
	return o.kind.getOwnProperty(o, name)
}

// GetProperty returns the first property called name along o's chain.
func (vm *VM) GetProperty(o *Object, name string) (PropertyDescriptor, bool, error) {
	d, _, ok, err := vm.findProperty(o, name)
	return d, ok, err
}

// HasProperty reports whether name is visible on o, own or inherited.
func (vm *VM) HasProperty(o *Object, name string) (bool, error) {
	_, _, ok, err := vm.findProperty(o, name)
	return ok, err
}

// HasOwnProperty reports whether o itself has name.
func (vm *VM) HasOwnProperty(o *Object, name string) bool {
	return o.HasOwnProperty(name)
}

// Get reads o[name], running getters with o as this.
func (vm *VM) Get(o *Object, name string) (Value, error) {
	return vm.getWithReceiver(o, name, ObjectValue(o))
}

func (vm *VM) getWithReceiver(o *Object, name string, receiver Value) (Value, error) {
	d, _, ok, err := vm.findProperty(o, name)
	if err != nil || !ok {
		return Undefined, err
	}
	if d.IsData() {
		return d.Value, nil
	}
	if d.Get == nil {
		return Undefined, nil
	}
	return vm.Call(ObjectValue(d.Get), receiver, nil)
}

// Put assigns o[name] = v. Rejections are silent unless throw is set, in
// which case they raise a TypeError.
func (vm *VM) Put(o *Object, name string, v Value, throw bool) error {
	return vm.put(o, name, v, ObjectValue(o), throw)
}

// put implements [[Put]] with an explicit receiver; receiver is a primitive
// when the assignment target was a primitive base wrapped into o.
func (vm *VM) put(o *Object, name string, v Value, receiver Value, throw bool) error {
	if debugProps {
		fmt.Printf("[PROP] put %s on %s (throw=%v)\n", name, o.Class(), throw)
	}
	if own, ok := o.kind.getOwnProperty(o, name); ok {
		if own.IsAccessor() {
			return vm.callSetter(own, name, v, receiver, throw)
		}
		if !own.Writable {
			_, err := vm.reject(throw, "Cannot assign to read only property '%s' of %s", name, receiver.ToString())
			return err
		}
		if !receiver.IsObject() {
			_, err := vm.reject(throw, "Cannot create property '%s' on %s '%s'", name, receiver.TypeName(), receiver.ToString())
			return err
		}
		_, err := o.kind.defineOwnProperty(vm, o, name, ValueFragment(v), throw)
		return err
	}

	inherited, _, found, err := vm.findProperty(o.prototype, name)
	if err != nil {
		return err
	}
	if found {
		if inherited.IsAccessor() {
			return vm.callSetter(inherited, name, v, receiver, throw)
		}
		if !inherited.Writable {
			_, err := vm.reject(throw, "Cannot assign to read only property '%s' of %s", name, receiver.ToString())
			return err
		}
	}
	if !o.extensible {
		_, err := vm.reject(throw, "Cannot add property %s, object is not extensible", name)
		return err
	}
	if !receiver.IsObject() {
		_, err := vm.reject(throw, "Cannot create property '%s' on %s '%s'", name, receiver.TypeName(), receiver.ToString())
		return err
	}
	_, err = o.kind.defineOwnProperty(vm, o, name, DataFragment(v, AttrAll), throw)
	return err
}

func (vm *VM) callSetter(d PropertyDescriptor, name string, v Value, receiver Value, throw bool) error {
	if d.Set == nil {
		_, err := vm.reject(throw, "Cannot set property %s of %s which has only a getter", name, receiver.ToString())
		return err
	}
	_, err := vm.Call(ObjectValue(d.Set), receiver, []Value{v})
	return err
}

// Delete removes an own property. Non-configurable properties are kept and
// reported as false, or as a TypeError when throw is set.
func (vm *VM) Delete(o *Object, name string, throw bool) (bool, error) {
	return o.kind.delete(vm, o, name, throw)
}

// DefineOwnProperty reconciles desc with o's own property name.
func (vm *VM) DefineOwnProperty(o *Object, name string, desc PropertyFragment, throw bool) (bool, error) {
	return o.kind.defineOwnProperty(vm, o, name, desc, throw)
}

// GetValue reads base[name] where base may be a primitive. Primitive bases
// resolve through their wrapper prototype without allocating a wrapper.
func (vm *VM) GetValue(base Value, name string) (Value, error) {
	switch base.typ {
	case TypeObject:
		return vm.getWithReceiver(base.obj, name, base)
	case TypeUndefined, TypeNull:
		return Undefined, vm.NewTypeError("Cannot read property '%s' of %s", name, base.ToString())
	case TypeString:
		if name == "length" {
			return IntegerValue(int64(utf16Length(base.str))), nil
		}
		if idx, ok := arrayIndex(name); ok {
			if ch, ok := utf16At(base.str, int(idx)); ok {
				return NewString(ch), nil
			}
		}
		return vm.getWithReceiver(vm.realm.StringPrototype, name, base)
	case TypeNumber:
		return vm.getWithReceiver(vm.realm.NumberPrototype, name, base)
	default:
		return vm.getWithReceiver(vm.realm.BooleanPrototype, name, base)
	}
}

// PutValue assigns base[name] = v where base may be a primitive. Writes to
// primitives can only reach inherited setters; anything else is rejected.
func (vm *VM) PutValue(base Value, name string, v Value, throw bool) error {
	switch base.typ {
	case TypeObject:
		return vm.put(base.obj, name, v, base, throw)
	case TypeUndefined, TypeNull:
		return vm.NewTypeError("Cannot set property '%s' of %s", name, base.ToString())
	}
	wrapper, err := vm.ToObject(base)
	if err != nil {
		return err
	}
	return vm.put(wrapper, name, v, base, throw)
}

// PreventExtensions clears the extensible flag.
func (vm *VM) PreventExtensions(o *Object) {
	o.extensible = false
}

func (vm *VM) IsExtensible(o *Object) bool {
	return o.extensible
}

// Seal makes every own property non-configurable and o non-extensible.
func (vm *VM) Seal(o *Object) error {
	for _, name := range o.kind.ownKeys(o) {
		if _, err := o.kind.defineOwnProperty(vm, o, name, PropertyFragment{}.WithConfigurable(false), true); err != nil {
			return err
		}
	}
	o.extensible = false
	return nil
}

// Freeze additionally makes every own data property non-writable.
func (vm *VM) Freeze(o *Object) error {
	for _, name := range o.kind.ownKeys(o) {
		d, ok := o.kind.getOwnProperty(o, name)
		if !ok {
			continue
		}
		frag := PropertyFragment{}.WithConfigurable(false)
		if d.IsData() {
			frag = frag.WithWritable(false)
		}
		if _, err := o.kind.defineOwnProperty(vm, o, name, frag, true); err != nil {
			return err
		}
	}
	o.extensible = false
	return nil
}

func (vm *VM) IsSealed(o *Object) bool {
	if o.extensible {
		return false
	}
	for _, name := range o.kind.ownKeys(o) {
		if d, ok := o.kind.getOwnProperty(o, name); ok && d.Configurable {
			return false
		}
	}
	return true
}

func (vm *VM) IsFrozen(o *Object) bool {
	if o.extensible {
		return false
	}
	for _, name := range o.kind.ownKeys(o) {
		d, ok := o.kind.getOwnProperty(o, name)
		if !ok {
			continue
		}
		if d.Configurable || d.IsData() && d.Writable {
			return false
		}
	}
	return true
}

// SetPrototype replaces o's prototype. It fails on non-extensible objects
// and when the new chain would loop back to o.
func (vm *VM) SetPrototype(o *Object, proto *Object) bool {
	if o.prototype == proto {
		return true
	}
	if !o.extensible {
		return false
	}
	seen := contains.Set{}
	for p := proto; p != nil; p = p.prototype {
		if p == o {
			return false
		}
		if !seen.Add(p.id) {
			break
		}
	}
	o.prototype = proto
	return true
}

// IsPrototypeOf reports whether proto appears on o's prototype chain.
func (vm *VM) IsPrototypeOf(proto *Object, o *Object) bool {
	if proto == nil || o == nil {
		return false
	}
	seen := contains.Set{}
	for p := o.prototype; p != nil; p = p.prototype {
		if p == proto {
			return true
		}
		if !seen.Add(p.id) {
			return false
		}
	}
	return false
}

// InstanceOf implements the instanceof operator.
func (vm *VM) InstanceOf(v Value, ctor Value) (bool, error) {
	c := ctor.AsObject()
	if !c.IsCallable() {
		return false, vm.NewTypeError("Right-hand side of 'instanceof' is not callable")
	}
	for {
		bf, ok := c.fn.(*BoundFunction)
		if !ok {
			break
		}
		c = bf.Target
	}
	o := v.AsObject()
	if o == nil {
		return false, nil
	}
	protoVal, err := vm.Get(c, "prototype")
	if err != nil {
		return false, err
	}
	proto := protoVal.AsObject()
	if proto == nil {
		return false, vm.NewTypeError("Function has non-object prototype '%s' in instanceof check", protoVal.ToString())
	}
	return vm.IsPrototypeOf(proto, o), nil
}

// ToObject boxes primitives into wrapper objects.
func (vm *VM) ToObject(v Value) (*Object, error) {
	switch v.typ {
	case TypeObject:
		return v.obj, nil
	case TypeBoolean:
		return newPrimitiveObject(ClassBoolean, vm.realm.BooleanPrototype, v), nil
	case TypeNumber:
		return newPrimitiveObject(ClassNumber, vm.realm.NumberPrototype, v), nil
	case TypeString:
		return newStringObject(vm.realm.StringPrototype, v.str), nil
	}
	return nil, vm.NewTypeError("Cannot convert undefined or null to object")
}

func newPrimitiveObject(class Class, proto *Object, v Value) *Object {
	o := newObjectOfClass(class, proto)
	prim := v
	o.primitive = &prim
	return o
}

type PreferredType uint8

const (
	HintDefault PreferredType = iota
	HintNumber
	HintString
)

// ToPrimitive converts objects through valueOf/toString in hint order.
func (vm *VM) ToPrimitive(v Value, hint PreferredType) (Value, error) {
	o := v.AsObject()
	if o == nil {
		return v, nil
	}
	order := [2]string{"valueOf", "toString"}
	if hint == HintString {
		order = [2]string{"toString", "valueOf"}
	}
	for _, method := range order {
		fn, err := vm.Get(o, method)
		if err != nil {
			return Undefined, err
		}
		if !fn.IsCallable() {
			continue
		}
		res, err := vm.Call(fn, v, nil)
		if err != nil {
			return Undefined, err
		}
		if res.IsPrimitive() {
			return res, nil
		}
	}
	return Undefined, vm.NewTypeError("Cannot convert object to primitive value")
}

// ToNumber is the full ToNumber conversion, running valueOf on objects.
func (vm *VM) ToNumber(v Value) (float64, error) {
	if v.IsObject() {
		p, err := vm.ToPrimitive(v, HintNumber)
		if err != nil {
			return math.NaN(), err
		}
		v = p
	}
	return v.ToFloat(), nil
}

// ToString is the full ToString conversion, running toString on objects.
func (vm *VM) ToString(v Value) (string, error) {
	if v.IsObject() {
		p, err := vm.ToPrimitive(v, HintString)
		if err != nil {
			return "", err
		}
		v = p
	}
	return v.ToString(), nil
}

// ToPropertyKey converts a value used as a property name.
func (vm *VM) ToPropertyKey(v Value) (string, error) {
	return vm.ToString(v)
}

// LooseEquals implements the == comparison.
func (vm *VM) LooseEquals(a, b Value) (bool, error) {
	if a.typ == b.typ {
		return a.StrictlyEquals(b), nil
	}
	switch {
	case a.IsNullish() && b.IsNullish():
		return true, nil
	case a.IsNullish() || b.IsNullish():
		return false, nil
	case a.IsNumber() && b.IsString():
		return a.num == b.ToFloat(), nil
	case a.IsString() && b.IsNumber():
		return a.ToFloat() == b.num, nil
	case a.IsBoolean():
		return vm.LooseEquals(NumberValue(a.num), b)
	case b.IsBoolean():
		return vm.LooseEquals(a, NumberValue(b.num))
	case a.IsObject():
		p, err := vm.ToPrimitive(a, HintDefault)
		if err != nil {
			return false, err
		}
		return vm.LooseEquals(p, b)
	default:
		p, err := vm.ToPrimitive(b, HintDefault)
		if err != nil {
			return false, err
		}
		return vm.LooseEquals(a, p)
	}
}

// NewPlainObject allocates an ordinary object inheriting from Object.prototype.
func (vm *VM) NewPlainObject() *Object {
	return NewObject(vm.realm.ObjectPrototype)
}

// NewObjectWithProto allocates an ordinary object with an explicit prototype.
func (vm *VM) NewObjectWithProto(proto *Object) *Object {
	return NewObject(proto)
}
