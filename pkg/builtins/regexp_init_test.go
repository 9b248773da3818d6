package builtins

import (
	"testing"

	"jscore/pkg/errors"
	"jscore/pkg/vm"
)

func newRegExp(t *testing.T, machine *vm.VM, pattern, flags string) vm.Value {
	t.Helper()
	return mustConstruct(t, machine, "RegExp", str(pattern), str(flags))
}

func TestRegExpExecProtocol(t *testing.T) {
	machine := newRealmVM(t)
	re := newRegExp(t, machine, `a(b)?`, "g")

	first := mustInvoke(t, machine, re, "exec", str("ab a"))
	expectElements(t, machine, first, "ab", "b")
	expectNumber(t, mustGetValue(t, machine, first, "index"), 0)
	expectString(t, mustGetValue(t, machine, first, "input"), "ab a")
	expectNumber(t, mustGetValue(t, machine, re, "lastIndex"), 2)

	second := mustInvoke(t, machine, re, "exec", str("ab a"))
	expectElements(t, machine, second, "a", "<undefined>")
	expectNumber(t, mustGetValue(t, machine, second, "index"), 3)

	if v := mustInvoke(t, machine, re, "exec", str("ab a")); !v.IsNull() {
		t.Errorf("third exec = %s, want null", v.Inspect())
	}
	expectNumber(t, mustGetValue(t, machine, re, "lastIndex"), 0)
}

func TestRegExpTest(t *testing.T) {
	machine := newRealmVM(t)
	tests := []struct {
		pattern, flags, input string
		want                  bool
	}{
		{"^abc$", "", "abc", true},
		{"^abc$", "", "ABC", false},
		{"^abc$", "i", "ABC", true},
		{"^b", "m", "a\nb", true},
		{"^b", "", "a\nb", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.flags, func(t *testing.T) {
			got := mustInvoke(t, machine, newRegExp(t, machine, tt.pattern, tt.flags), "test", str(tt.input))
			if got.AsBoolean() != tt.want {
				t.Errorf("test(%q) = %v, want %v", tt.input, got.AsBoolean(), tt.want)
			}
		})
	}
}

func TestRegExpConstructor(t *testing.T) {
	machine := newRealmVM(t)
	re := newRegExp(t, machine, "x", "gi")

	expectString(t, mustInvoke(t, machine, re, "toString"), "/x/gi")
	expectString(t, mustInvoke(t, machine, mustConstruct(t, machine, "RegExp"), "toString"), "/(?:)/")
	expectString(t, mustGetValue(t, machine, re, "source"), "x")
	if !mustGetValue(t, machine, re, "global").AsBoolean() || mustGetValue(t, machine, re, "multiline").AsBoolean() {
		t.Error("flag properties do not match /x/gi")
	}

	// Calling RegExp on a RegExp returns it unchanged; new copies it
	if same := mustCall(t, machine, "RegExp", re); same.AsObject() != re.AsObject() {
		t.Error("RegExp(re) should return re")
	}
	copied := mustConstruct(t, machine, "RegExp", re)
	if copied.AsObject() == re.AsObject() {
		t.Error("new RegExp(re) should create a new object")
	}
	expectString(t, mustInvoke(t, machine, copied, "toString"), "/x/gi")

	_, err := machine.Construct(lookup(t, machine, "RegExp"), []vm.Value{re, str("m")})
	expectKind(t, err, errors.KindTypeError)

	_, err = machine.Construct(lookup(t, machine, "RegExp"), []vm.Value{str("a"), str("gg")})
	expectKind(t, err, errors.KindSyntaxError)

	_, err = machine.Construct(lookup(t, machine, "RegExp"), []vm.Value{str("(")})
	expectKind(t, err, errors.KindSyntaxError)

	_, err = callPath(machine, "RegExp.prototype.exec.call", vm.ObjectValue(machine.NewPlainObject()), str("a"))
	expectKind(t, err, errors.KindTypeError)
}
