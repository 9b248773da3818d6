package vm

import (
	goerrors "errors"
	"fmt"

	"jscore/pkg/errors"
)

// Exception carries a thrown script value through Go error returns.
type Exception struct {
	value Value
}

// NewException wraps an arbitrary thrown value.
func NewException(v Value) *Exception {
	return &Exception{value: v}
}

// Value returns the thrown value.
func (e *Exception) Value() Value { return e.value }

func (e *Exception) Error() string {
	return "Uncaught " + e.describe()
}

// Kind reports the error kind of a thrown error object, judged by its name.
func (e *Exception) Kind() errors.Kind {
	o := e.value.AsObject()
	if o == nil {
		return errors.KindError
	}
	return errors.ParseKind(plainProperty(o, "name").ToString())
}

// Message returns the thrown error's message, or the thrown value's string
// form for non-error values.
func (e *Exception) Message() string {
	o := e.value.AsObject()
	if o == nil || o.Class() != ClassError {
		return e.value.Inspect()
	}
	return plainProperty(o, "message").ToString()
}

// ScriptError detaches the exception from the runtime for reporting.
func (e *Exception) ScriptError() *errors.ScriptError {
	err := errors.New(e.Kind(), "%s", e.Message())
	err.Cause = e
	return err
}

func (e *Exception) describe() string {
	o := e.value.AsObject()
	if o == nil || o.Class() != ClassError {
		return e.value.Inspect()
	}
	name := plainProperty(o, "name").ToString()
	msg := plainProperty(o, "message").ToString()
	if msg == "" {
		return name
	}
	return name + ": " + msg
}

// plainProperty reads a data property along the prototype chain without
// running getters. Used where no VM is at hand to run script code.
func plainProperty(o *Object, name string) Value {
	for depth := 0; o != nil && depth < DefaultMaxPrototypeDepth; depth++ {
		if d, ok := o.GetOwnProperty(name); ok {
			if d.IsData() {
				return d.Value
			}
			return Undefined
		}
		o = o.prototype
	}
	return Undefined
}

// NewErrorObject builds an error object of the given kind. An empty message
// leaves the inherited "" message in place.
func (vm *VM) NewErrorObject(kind errors.Kind, message string) *Object {
	proto := vm.realm.ErrorPrototypes[kind]
	if proto == nil {
		proto = vm.realm.ErrorPrototype
	}
	o := newObjectOfClass(ClassError, proto)
	if message != "" {
		o.SetInternal("message", NewString(message))
	}
	return o
}

// NewError returns an Exception holding a freshly built error object.
func (vm *VM) NewError(kind errors.Kind, format string, args ...interface{}) *Exception {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	if debugVM {
		fmt.Printf("[VM] throwing %s: %s\n", kind, msg)
	}
	return NewException(ObjectValue(vm.NewErrorObject(kind, msg)))
}

func (vm *VM) NewTypeError(format string, args ...interface{}) error {
	return vm.NewError(errors.KindTypeError, format, args...)
}

func (vm *VM) NewRangeError(format string, args ...interface{}) error {
	return vm.NewError(errors.KindRangeError, format, args...)
}

func (vm *VM) NewReferenceError(format string, args ...interface{}) error {
	return vm.NewError(errors.KindReferenceError, format, args...)
}

func (vm *VM) NewSyntaxError(format string, args ...interface{}) error {
	return vm.NewError(errors.KindSyntaxError, format, args...)
}

// ToException converts any Go error into a throwable Exception. Script
// errors keep their kind; any other error becomes a plain Error.
func (vm *VM) ToException(err error) *Exception {
	switch e := err.(type) {
	case nil:
		return nil
	case *Exception:
		return e
	case errors.CoreError:
		return vm.NewError(e.Kind(), "%s", e.Message())
	default:
		return vm.NewError(errors.KindError, "%s", err.Error())
	}
}

// AsException extracts the Exception from err, if it carries one.
func AsException(err error) (*Exception, bool) {
	var e *Exception
	ok := goerrors.As(err, &e)
	return e, ok
}
