package vm

import "math"

var arrayKind *objectKind

func init() {
	arrayKind = &objectKind{
		getOwnProperty:    ordinaryGetOwnProperty,
		defineOwnProperty: arrayDefineOwnProperty,
		delete:            ordinaryDelete,
		ownKeys:           ordinaryOwnKeys,
	}
}

func newArrayObject(proto *Object) *Object {
	o := newObjectOfClass(ClassArray, proto)
	o.kind = arrayKind
	o.store().Set("length", NewDataDescriptor(IntegerValue(0), AttrWritable))
	return o
}

// NewArray creates an array holding values at indices 0..len-1.
func (vm *VM) NewArray(values ...Value) *Object {
	o := newArrayObject(vm.realm.ArrayPrototype)
	for i, v := range values {
		o.store().Set(IndexKey(uint32(i)), NewDataDescriptor(v, AttrAll))
	}
	o.setArrayLength(uint32(len(values)))
	return o
}

// NewArrayWithLength creates an empty array whose length is n.
func (vm *VM) NewArrayWithLength(n uint32) *Object {
	o := newArrayObject(vm.realm.ArrayPrototype)
	o.setArrayLength(n)
	return o
}

// ArrayLength returns the length of an array object.
func (o *Object) ArrayLength() uint32 {
	d, _ := o.props.Get("length")
	return uint32(d.Value.num)
}

func (o *Object) setArrayLength(n uint32) {
	d, _ := o.props.Get("length")
	d.Value = IntegerValue(int64(n))
	o.props.Set("length", d)
}

// arrayDefineOwnProperty keeps length in step with the index properties.
func arrayDefineOwnProperty(vm *VM, o *Object, name string, desc PropertyFragment, throw bool) (bool, error) {
	lenDesc, _ := o.props.Get("length")
	oldLen := uint32(lenDesc.Value.num)

	if name == "length" {
		if !desc.Has(HasValue) {
			return ordinaryDefineOwnProperty(vm, o, name, desc, throw)
		}
		num, err := vm.ToNumber(desc.Value)
		if err != nil {
			return false, err
		}
		newLen := ToUint32(num)
		if float64(newLen) != num {
			return false, vm.NewRangeError("Invalid array length")
		}
		desc.Value = IntegerValue(int64(newLen))
		if newLen >= oldLen {
			return ordinaryDefineOwnProperty(vm, o, name, desc, throw)
		}
		if !lenDesc.Writable {
			return vm.reject(throw, "Cannot assign to read only property 'length' of object '[object Array]'")
		}
		newWritable := !desc.Has(HasWritable) || desc.Writable
		if !newWritable {
			// Delay clearing writable until the elements are gone.
			desc = desc.WithWritable(true)
		}
		if ok, err := ordinaryDefineOwnProperty(vm, o, name, desc, throw); !ok || err != nil {
			return ok, err
		}
		for _, idx := range o.props.IndicesFrom(newLen) {
			deleted, err := ordinaryDelete(vm, o, IndexKey(idx), false)
			if err != nil {
				return false, err
			}
			if !deleted {
				o.setArrayLength(idx + 1)
				if !newWritable {
					o.freezeArrayLength()
				}
				return vm.reject(throw, "Cannot delete property '%d' of [object Array]", idx)
			}
		}
		if !newWritable {
			o.freezeArrayLength()
		}
		return true, nil
	}

	if idx, ok := arrayIndex(name); ok {
		if idx >= oldLen && !lenDesc.Writable {
			return vm.reject(throw, "Cannot add property %d, array length is read-only", idx)
		}
		if ok, err := ordinaryDefineOwnProperty(vm, o, name, desc, false); !ok || err != nil {
			if err != nil {
				return false, err
			}
			return vm.reject(throw, "Cannot redefine property: %s", name)
		}
		if idx >= oldLen {
			o.setArrayLength(idx + 1)
		}
		return true, nil
	}

	return ordinaryDefineOwnProperty(vm, o, name, desc, throw)
}

func (o *Object) freezeArrayLength() {
	d, _ := o.props.Get("length")
	d.Writable = false
	o.props.Set("length", d)
}

// IsArray reports whether v is an array object.
func IsArray(v Value) bool {
	o := v.AsObject()
	return o != nil && o.class == ClassArray
}

// LengthOf reads the generic "length" of an array-like object as ToUint32.
func (vm *VM) LengthOf(o *Object) (uint32, error) {
	if o.class == ClassArray {
		return o.ArrayLength(), nil
	}
	lv, err := vm.Get(o, "length")
	if err != nil {
		return 0, err
	}
	n, err := vm.ToNumber(lv)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) {
		return 0, nil
	}
	return ToUint32(n), nil
}
