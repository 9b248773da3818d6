package vm

// Attr is a bitmask of property attributes used when building descriptors.
type Attr uint8

const (
	AttrWritable Attr = 1 << iota
	AttrEnumerable
	AttrConfigurable

	AttrNone     Attr = 0
	AttrAll           = AttrWritable | AttrEnumerable | AttrConfigurable
	AttrInternal      = AttrWritable | AttrConfigurable // builtin methods: hidden from enumeration
)

type PropertyKind uint8

const (
	DataProperty PropertyKind = iota
	AccessorProperty
)

// PropertyDescriptor is a complete stored property. Exactly one of the data
// fields (Value, Writable) or accessor fields (Get, Set) is meaningful,
// selected by Kind. A nil Get or Set means the accessor half is undefined.
type PropertyDescriptor struct {
	Kind         PropertyKind
	Value        Value
	Get          *Object
	Set          *Object
	Writable     bool
	Enumerable   bool
	Configurable bool
}

func NewDataDescriptor(v Value, attrs Attr) PropertyDescriptor {
	return PropertyDescriptor{
		Kind:         DataProperty,
		Value:        v,
		Writable:     attrs&AttrWritable != 0,
		Enumerable:   attrs&AttrEnumerable != 0,
		Configurable: attrs&AttrConfigurable != 0,
	}
}

func NewAccessorDescriptor(get, set *Object, attrs Attr) PropertyDescriptor {
	return PropertyDescriptor{
		Kind:         AccessorProperty,
		Get:          get,
		Set:          set,
		Enumerable:   attrs&AttrEnumerable != 0,
		Configurable: attrs&AttrConfigurable != 0,
	}
}

func (d PropertyDescriptor) IsData() bool { return d.Kind == DataProperty }
func (d PropertyDescriptor) IsAccessor() bool { return d.Kind == AccessorProperty }

// Fragment converts a complete descriptor into a fragment with every field
// of its kind present.
func (d PropertyDescriptor) Fragment() PropertyFragment {
	f := PropertyFragment{
		Enumerable:   d.Enumerable,
		Configurable: d.Configurable,
		Fields:       HasEnumerable | HasConfigurable,
	}
	if d.IsAccessor() {
		f.Get, f.Set = d.Get, d.Set
		f.Fields |= HasGet | HasSet
	} else {
		f.Value, f.Writable = d.Value, d.Writable
		f.Fields |= HasValue | HasWritable
	}
	return f
}

// FragmentField records which fields a PropertyFragment specifies.
type FragmentField uint8

const (
	HasValue FragmentField = 1 << iota
	HasWritable
	HasGet
	HasSet
	HasEnumerable
	HasConfigurable
)

// PropertyFragment is a partial descriptor as supplied to DefineOwnProperty.
// Absent fields leave the existing property untouched, or take their
// defaults (undefined / false) when a new property is created.
type PropertyFragment struct {
	Value        Value
	Get          *Object
	Set          *Object
	Writable     bool
	Enumerable   bool
	Configurable bool
	Fields       FragmentField
}

// DataFragment returns a fully specified data fragment.
func DataFragment(v Value, attrs Attr) PropertyFragment {
	return NewDataDescriptor(v, attrs).Fragment()
}

// AccessorFragment returns a fully specified accessor fragment.
func AccessorFragment(get, set *Object, attrs Attr) PropertyFragment {
	return NewAccessorDescriptor(get, set, attrs).Fragment()
}

// ValueFragment specifies only a value, as used by assignment.
func ValueFragment(v Value) PropertyFragment {
	return PropertyFragment{Value: v, Fields: HasValue}
}

func (f PropertyFragment) Has(field FragmentField) bool { return f.Fields&field != 0 }

func (f PropertyFragment) IsAccessor() bool { return f.Fields&(HasGet|HasSet) != 0 }
func (f PropertyFragment) IsData() bool { return f.Fields&(HasValue|HasWritable) != 0 }
func (f PropertyFragment) IsGeneric() bool { return !f.IsAccessor() && !f.IsData() }
func (f PropertyFragment) IsEmpty() bool { return f.Fields == 0 }

func (f PropertyFragment) WithValue(v Value) PropertyFragment {
	f.Value = v
	f.Fields |= HasValue
	return f
}

func (f PropertyFragment) WithWritable(b bool) PropertyFragment {
	f.Writable = b
	f.Fields |= HasWritable
	return f
}

func (f PropertyFragment) WithGetter(get *Object) PropertyFragment {
	f.Get = get
	f.Fields |= HasGet
	return f
}

func (f PropertyFragment) WithSetter(set *Object) PropertyFragment {
	f.Set = set
	f.Fields |= HasSet
	return f
}

func (f PropertyFragment) WithEnumerable(b bool) PropertyFragment {
	f.Enumerable = b
	f.Fields |= HasEnumerable
	return f
}

func (f PropertyFragment) WithConfigurable(b bool) PropertyFragment {
	f.Configurable = b
	f.Fields |= HasConfigurable
	return f
}

// descriptor materializes a fragment into a new property, defaulting every
// absent field.
func (f PropertyFragment) descriptor() PropertyDescriptor {
	d := PropertyDescriptor{
		Enumerable:   f.Enumerable && f.Has(HasEnumerable),
		Configurable: f.Configurable && f.Has(HasConfigurable),
	}
	if f.IsAccessor() {
		d.Kind = AccessorProperty
		if f.Has(HasGet) {
			d.Get = f.Get
		}
		if f.Has(HasSet) {
			d.Set = f.Set
		}
		return d
	}
	d.Kind = DataProperty
	if f.Has(HasValue) {
		d.Value = f.Value
	}
	d.Writable = f.Writable && f.Has(HasWritable)
	return d
}

// describedBy reports whether every field present in f already holds the
// same value in d.
func (d PropertyDescriptor) describedBy(f PropertyFragment) bool {
	if f.Has(HasEnumerable) && f.Enumerable != d.Enumerable {
		return false
	}
	if f.Has(HasConfigurable) && f.Configurable != d.Configurable {
		return false
	}
	if f.IsData() && d.IsAccessor() || f.IsAccessor() && d.IsData() {
		return false
	}
	if f.Has(HasValue) && !SameValue(f.Value, d.Value) {
		return false
	}
	if f.Has(HasWritable) && f.Writable != d.Writable {
		return false
	}
	if f.Has(HasGet) && f.Get != d.Get {
		return false
	}
	if f.Has(HasSet) && f.Set != d.Set {
		return false
	}
	return true
}

// merge applies the fields present in f onto d.
func (d PropertyDescriptor) merge(f PropertyFragment) PropertyDescriptor {
	if f.Has(HasEnumerable) {
		d.Enumerable = f.Enumerable
	}
	if f.Has(HasConfigurable) {
		d.Configurable = f.Configurable
	}
	if f.Has(HasValue) {
		d.Value = f.Value
	}
	if f.Has(HasWritable) {
		d.Writable = f.Writable
	}
	if f.Has(HasGet) {
		d.Get = f.Get
	}
	if f.Has(HasSet) {
		d.Set = f.Set
	}
	return d
}
