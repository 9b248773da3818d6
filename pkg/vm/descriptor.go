package vm

// ToPropertyFragment converts a script descriptor object such as
// {value: 1, writable: true} into a fragment.
func (vm *VM) ToPropertyFragment(v Value) (PropertyFragment, error) {
	o := v.AsObject()
	if o == nil {
		return PropertyFragment{}, vm.NewTypeError("Property description must be an object: %s", v.Inspect())
	}
	var f PropertyFragment

	flag := func(name string, set func(bool) PropertyFragment) error {
		has, err := vm.HasProperty(o, name)
		if err != nil || !has {
			return err
		}
		b, err := vm.Get(o, name)
		if err != nil {
			return err
		}
		f = set(b.ToBoolean())
		return nil
	}
	if err := flag("enumerable", func(b bool) PropertyFragment { return f.WithEnumerable(b) }); err != nil {
		return f, err
	}
	if err := flag("configurable", func(b bool) PropertyFragment { return f.WithConfigurable(b) }); err != nil {
		return f, err
	}
	if has, err := vm.HasProperty(o, "value"); err != nil {
		return f, err
	} else if has {
		val, err := vm.Get(o, "value")
		if err != nil {
			return f, err
		}
		f = f.WithValue(val)
	}
	if err := flag("writable", func(b bool) PropertyFragment { return f.WithWritable(b) }); err != nil {
		return f, err
	}

	accessor := func(name string) (*Object, bool, error) {
		has, err := vm.HasProperty(o, name)
		if err != nil || !has {
			return nil, false, err
		}
		fn, err := vm.Get(o, name)
		if err != nil {
			return nil, false, err
		}
		if fn.IsUndefined() {
			return nil, true, nil
		}
		if !fn.IsCallable() {
			return nil, false, vm.NewTypeError("%s must be a function: %s", accessorLabel(name), fn.Inspect())
		}
		return fn.AsObject(), true, nil
	}
	if get, has, err := accessor("get"); err != nil {
		return f, err
	} else if has {
		f = f.WithGetter(get)
	}
	if set, has, err := accessor("set"); err != nil {
		return f, err
	} else if has {
		f = f.WithSetter(set)
	}

	if f.IsAccessor() && f.IsData() {
		return f, vm.NewTypeError("Invalid property descriptor. Cannot both specify accessors and a value or writable attribute")
	}
	return f, nil
}

func accessorLabel(name string) string {
	if name == "get" {
		return "Getter"
	}
	return "Setter"
}

// FromPropertyDescriptor converts a stored descriptor into a plain object.
func (vm *VM) FromPropertyDescriptor(d PropertyDescriptor) *Object {
	o := vm.NewPlainObject()
	if d.IsData() {
		o.SetOwn("value", d.Value)
		o.SetOwn("writable", BooleanValue(d.Writable))
	} else {
		o.SetOwn("get", ObjectValue(d.Get).orUndefined())
		o.SetOwn("set", ObjectValue(d.Set).orUndefined())
	}
	o.SetOwn("enumerable", BooleanValue(d.Enumerable))
	o.SetOwn("configurable", BooleanValue(d.Configurable))
	return o
}

// orUndefined maps Null (the ObjectValue of a nil handle) to Undefined.
func (v Value) orUndefined() Value {
	if v.IsNull() {
		return Undefined
	}
	return v
}
