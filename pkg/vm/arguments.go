package vm

// argumentsMap aliases index properties of a non-strict arguments object to
// the activation slots of the corresponding named parameters.
type argumentsMap struct {
	slots  *Slots
	mapped map[string]int // index key -> slot index
}

var argumentsKind *objectKind

func init() {
	argumentsKind = &objectKind{
		getOwnProperty:    argumentsGetOwnProperty,
		defineOwnProperty: argumentsDefineOwnProperty,
		delete:            argumentsDelete,
		ownKeys:           ordinaryOwnKeys,
	}
}

// newArgumentsObject builds the arguments object for one activation.
func (vm *VM) newArgumentsObject(callee *Object, f *SourceFunction, slots *Slots, args []Value) *Object {
	o := newObjectOfClass(ClassArguments, vm.realm.ObjectPrototype)
	o.DefineDirect("length", NewDataDescriptor(IntegerValue(int64(len(args))), AttrInternal))
	for i, v := range args {
		o.DefineDirect(IndexKey(uint32(i)), NewDataDescriptor(v, AttrAll))
	}

	if f.Strict {
		vm.poison(o, "callee")
		vm.poison(o, "caller")
		return o
	}
	o.DefineDirect("callee", NewDataDescriptor(ObjectValue(callee), AttrInternal))

	n := len(f.Params)
	if len(args) < n {
		n = len(args)
	}
	if n == 0 {
		return o
	}
	m := &argumentsMap{slots: slots, mapped: make(map[string]int, n)}
	seen := make(map[string]bool, n)
	// Walk backwards so a duplicated parameter name maps only its last position.
	for i := len(f.Params) - 1; i >= 0; i-- {
		name := f.Params[i]
		if seen[name] {
			continue
		}
		seen[name] = true
		if i >= n {
			continue
		}
		if idx, ok := slots.Index(name); ok {
			m.mapped[IndexKey(uint32(i))] = idx
		}
	}
	o.kind = argumentsKind
	o.internal = m
	return o
}

func argumentsGetOwnProperty(o *Object, name string) (PropertyDescriptor, bool) {
	d, ok := o.props.Get(name)
	if !ok {
		return d, false
	}
	m := o.internal.(*argumentsMap)
	if idx, isMapped := m.mapped[name]; isMapped {
		d.Value, _ = m.slots.Get(idx)
	}
	return d, true
}

func argumentsDefineOwnProperty(vm *VM, o *Object, name string, desc PropertyFragment, throw bool) (bool, error) {
	m := o.internal.(*argumentsMap)
	idx, isMapped := m.mapped[name]
	if isMapped && desc.IsData() && !desc.Has(HasValue) && desc.Has(HasWritable) && !desc.Writable {
		// Freezing a mapped index captures the parameter's current value.
		current, _ := m.slots.Get(idx)
		desc = desc.WithValue(current)
	}
	ok, err := ordinaryDefineOwnProperty(vm, o, name, desc, false)
	if err != nil {
		return false, err
	}
	if !ok {
		return vm.reject(throw, "Cannot redefine property: %s", name)
	}
	if isMapped {
		if desc.IsAccessor() {
			delete(m.mapped, name)
		} else {
			if desc.Has(HasValue) {
				if err := m.slots.Set(idx, desc.Value); err != nil {
					return false, err
				}
			}
			if desc.Has(HasWritable) && !desc.Writable {
				delete(m.mapped, name)
			}
		}
	}
	return true, nil
}

func argumentsDelete(vm *VM, o *Object, name string, throw bool) (bool, error) {
	ok, err := ordinaryDelete(vm, o, name, throw)
	if ok {
		delete(o.internal.(*argumentsMap).mapped, name)
	}
	return ok, err
}

// IsMappedArgument reports whether index i of an arguments object still
// aliases its parameter binding.
func (o *Object) IsMappedArgument(i int) bool {
	m, ok := o.internal.(*argumentsMap)
	if !ok {
		return false
	}
	_, mapped := m.mapped[IndexKey(uint32(i))]
	return mapped
}
