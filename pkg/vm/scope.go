package vm

type ScopeKind uint8

const (
	DeclarativeScope ScopeKind = iota
	ObjectScope
)

// Scope is one link of an identifier-resolution chain. Declarative scopes
// hold their bindings in Slots; object scopes (the global scope, with
// blocks) resolve through an object's properties.
type Scope struct {
	kind        ScopeKind
	outer       *Scope
	slots       *Slots
	object      *Object
	provideThis bool
}

func NewDeclarativeScope(outer *Scope) *Scope {
	return &Scope{kind: DeclarativeScope, outer: outer, slots: NewSlots(4)}
}

// NewObjectScope creates a scope backed by o. provideThis is set for with
// blocks, whose object becomes the implicit this of calls resolved through it.
func NewObjectScope(o *Object, outer *Scope, provideThis bool) *Scope {
	return &Scope{kind: ObjectScope, outer: outer, object: o, provideThis: provideThis}
}

func (s *Scope) Kind() ScopeKind { return s.kind }
func (s *Scope) Outer() *Scope { return s.outer }
func (s *Scope) Slots() *Slots { return s.slots }
func (s *Scope) Object() *Object { return s.object }

// ImplicitThis is the this value for a call whose callee was resolved in s.
func (s *Scope) ImplicitThis() Value {
	if s != nil && s.kind == ObjectScope && s.provideThis {
		return ObjectValue(s.object)
	}
	return Undefined
}

// LookupIdentifier walks the chain for name. found is false when no scope
// binds it; the scope that does is returned alongside the value.
func (vm *VM) LookupIdentifier(scope *Scope, name string) (v Value, where *Scope, found bool, err error) {
	for s := scope; s != nil; s = s.outer {
		switch s.kind {
		case DeclarativeScope:
			if idx, ok := s.slots.Index(name); ok {
				v, _ = s.slots.Get(idx)
				return v, s, true, nil
			}
		case ObjectScope:
			has, err := vm.HasProperty(s.object, name)
			if err != nil {
				return Undefined, nil, false, err
			}
			if has {
				v, err = vm.Get(s.object, name)
				return v, s, true, err
			}
		}
	}
	return Undefined, nil, false, nil
}

// ResolveIdentifier reads name, raising a ReferenceError when nothing binds it.
func (vm *VM) ResolveIdentifier(scope *Scope, name string) (Value, error) {
	v, _, found, err := vm.LookupIdentifier(scope, name)
	if err != nil {
		return Undefined, err
	}
	if !found {
		return Undefined, vm.NewReferenceError("%s is not defined", name)
	}
	return v, nil
}

// AssignIdentifier writes name in the nearest scope that binds it. An
// unresolvable name is a ReferenceError in strict code and otherwise
// becomes a property of the global object.
func (vm *VM) AssignIdentifier(scope *Scope, name string, v Value, strict bool) error {
	for s := scope; s != nil; s = s.outer {
		switch s.kind {
		case DeclarativeScope:
			if idx, ok := s.slots.Index(name); ok {
				if s.slots.IsImmutable(idx) {
					if strict {
						return vm.NewTypeError("Assignment to constant variable '%s'", name)
					}
					return nil
				}
				return s.slots.Set(idx, v)
			}
		case ObjectScope:
			has, err := vm.HasProperty(s.object, name)
			if err != nil {
				return err
			}
			if has {
				return vm.Put(s.object, name, v, strict)
			}
		}
	}
	if strict {
		return vm.NewReferenceError("%s is not defined", name)
	}
	return vm.Put(vm.realm.GlobalObject, name, v, false)
}

// DeleteIdentifier implements delete applied to a bare identifier.
// Declarative bindings cannot be deleted; unresolvable names delete
// trivially.
func (vm *VM) DeleteIdentifier(scope *Scope, name string) (bool, error) {
	for s := scope; s != nil; s = s.outer {
		switch s.kind {
		case DeclarativeScope:
			if s.slots.Has(name) {
				return false, nil
			}
		case ObjectScope:
			has, err := vm.HasProperty(s.object, name)
			if err != nil {
				return false, err
			}
			if has {
				return vm.Delete(s.object, name, false)
			}
		}
	}
	return true, nil
}

// DeclareVar creates a binding in scope without walking outward. In an
// object scope this defines a non-deletable property, as var declarations
// do on the global object; an existing binding keeps its value.
func (vm *VM) DeclareVar(scope *Scope, name string, v Value) error {
	switch scope.kind {
	case DeclarativeScope:
		if !scope.slots.Has(name) {
			scope.slots.Define(name, v)
		}
		return nil
	default:
		if scope.object.HasOwnProperty(name) {
			return nil
		}
		_, err := vm.DefineOwnProperty(scope.object, name, DataFragment(v, AttrWritable|AttrEnumerable), true)
		return err
	}
}

// DeclareFunction binds a function declaration, overwriting any existing binding.
func (vm *VM) DeclareFunction(scope *Scope, name string, fn *Object) error {
	switch scope.kind {
	case DeclarativeScope:
		scope.slots.Define(name, ObjectValue(fn))
		return nil
	default:
		if d, ok := scope.object.GetOwnProperty(name); ok && !d.Configurable {
			return vm.Put(scope.object, name, ObjectValue(fn), true)
		}
		_, err := vm.DefineOwnProperty(scope.object, name, DataFragment(ObjectValue(fn), AttrWritable|AttrEnumerable), true)
		return err
	}
}
