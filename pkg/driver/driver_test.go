package driver

import (
	"bytes"
	goerrors "errors"
	"math"
	"strings"
	"sync"
	"testing"

	"jscore/pkg/errors"
	"jscore/pkg/vm"
)

// bodyFunc is a function body the test evaluator runs directly.
type bodyFunc func(machine *vm.VM, activation *vm.Scope, this vm.Value) (vm.Value, error)

type closureEvaluator struct{}

func (closureEvaluator) EvalFunctionBody(machine *vm.VM, fn *vm.SourceFunction, activation *vm.Scope, this vm.Value) (vm.Value, error) {
	return fn.Body.(bodyFunc)(machine, activation, this)
}

// compilingEvaluator also backs the Function constructor; every compiled
// body returns its own source text.
type compilingEvaluator struct{ closureEvaluator }

func (compilingEvaluator) CompileFunction(machine *vm.VM, params []string, body string) (*vm.SourceFunction, error) {
	return &vm.SourceFunction{
		Name:   "anonymous",
		Params: params,
		Body: bodyFunc(func(*vm.VM, *vm.Scope, vm.Value) (vm.Value, error) {
			return vm.NewString(body), nil
		}),
		Scope: machine.Realm().GlobalScope,
	}, nil
}

func newTestRuntime(t *testing.T, opts Options) *Runtime {
	t.Helper()
	if opts.Evaluator == nil {
		opts.Evaluator = closureEvaluator{}
	}
	rt, err := NewRuntime(opts)
	if err != nil {
		t.Fatalf("NewRuntime failed: %v", err)
	}
	return rt
}

func TestNewRuntimeInstallsBuiltins(t *testing.T) {
	rt := newTestRuntime(t, Options{})
	for _, name := range []string{"Object", "Function", "Array", "String", "Number", "Boolean", "RegExp", "JSON", "Error", "TypeError", "parseInt", "NaN"} {
		if _, ok := rt.Global(name); !ok {
			t.Errorf("global %s is missing", name)
		}
	}
	if _, ok := rt.Global("require"); ok {
		t.Error("unexpected global require")
	}
}

func TestFunctionConstructorUsesCompiler(t *testing.T) {
	rt := newTestRuntime(t, Options{Evaluator: compilingEvaluator{}})
	err := rt.Do(func(machine *vm.VM) error {
		ctor, _ := machine.GetGlobal("Function")
		fn, err := machine.Call(ctor, vm.Undefined, []vm.Value{vm.NewString("a"), vm.NewString("return a")})
		if err != nil {
			return err
		}
		got, err := machine.Call(fn, vm.Undefined, nil)
		if err != nil {
			return err
		}
		if got.AsString() != "return a" {
			t.Errorf("compiled body returned %s", got.Inspect())
		}
		length, _ := machine.GetValue(fn, "length")
		if length.AsFloat() != 1 {
			t.Errorf("length = %s, want 1", length.Inspect())
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestParseAndStringifyJSON(t *testing.T) {
	rt := newTestRuntime(t, Options{})

	v, err := rt.ParseJSON(`{"name":"x","tags":[1,2]}`, vm.Undefined)
	if err != nil {
		t.Fatal(err)
	}
	text, ok, err := rt.StringifyJSON(v, "")
	if err != nil || !ok {
		t.Fatalf("StringifyJSON = %q, %v, %v", text, ok, err)
	}
	if text != `{"name":"x","tags":[1,2]}` {
		t.Errorf("compact = %s", text)
	}

	text, _, _ = rt.StringifyJSON(v, "  ")
	if want := "{\n  \"name\": \"x\",\n  \"tags\": [\n    1,\n    2\n  ]\n}"; text != want {
		t.Errorf("indented = %q, want %q", text, want)
	}

	if _, ok, err := rt.StringifyJSON(vm.Undefined, ""); ok || err != nil {
		t.Errorf("stringify undefined = %v, %v", ok, err)
	}

	_, err = rt.ParseJSON(`{"a":`, vm.Undefined)
	if ex, ok := vm.AsException(err); !ok || ex.Kind() != errors.KindSyntaxError {
		t.Errorf("truncated input error = %v", err)
	}
}

func TestParseJSONWithReviver(t *testing.T) {
	rt := newTestRuntime(t, Options{})
	var reviver vm.Value
	rt.Do(func(machine *vm.VM) error {
		reviver = vm.ObjectValue(machine.NewNativeFunction("reviver", 2, func(machine *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
			if args[1].IsNumber() {
				return vm.NumberValue(args[1].AsFloat() + 1), nil
			}
			return args[1], nil
		}))
		return nil
	})
	v, err := rt.ParseJSON(`[1,{"n":2}]`, reviver)
	if err != nil {
		t.Fatal(err)
	}
	text, _, _ := rt.StringifyJSON(v, "")
	if text != `[2,{"n":3}]` {
		t.Errorf("revived = %s", text)
	}
}

func TestSetAndGet(t *testing.T) {
	rt := newTestRuntime(t, Options{})
	if err := rt.Set("config", map[string]interface{}{"port": 8080, "hosts": []interface{}{"a", "b"}}); err != nil {
		t.Fatal(err)
	}
	got, ok := rt.Get("config")
	if !ok {
		t.Fatal("config is missing")
	}
	m, ok := got.(map[string]interface{})
	if !ok {
		t.Fatalf("Get returned %T", got)
	}
	if m["port"] != float64(8080) {
		t.Errorf("port = %v", m["port"])
	}
	if hosts, _ := m["hosts"].([]interface{}); len(hosts) != 2 || hosts[1] != "b" {
		t.Errorf("hosts = %v", m["hosts"])
	}
	if _, ok := rt.Get("missing"); ok {
		t.Error("Get(missing) reported true")
	}
	if err := rt.Set("bad", struct{}{}); err == nil {
		t.Error("Set with an unsupported type should fail")
	}
}

func TestCall(t *testing.T) {
	rt := newTestRuntime(t, Options{})
	rt.Set("add", func(args ...vm.Value) vm.Value {
		return vm.NumberValue(args[0].AsFloat() + args[1].AsFloat())
	})
	got, err := rt.Call("add", 2, 3.5)
	if err != nil {
		t.Fatal(err)
	}
	if got.AsFloat() != 5.5 {
		t.Errorf("add = %s", got.Inspect())
	}

	got, err = rt.Call("parseInt", "ff", 16)
	if err != nil || got.AsFloat() != 255 {
		t.Errorf("parseInt = %s, %v", got.Inspect(), err)
	}

	_, err = rt.Call("nope")
	if ex, ok := vm.AsException(err); !ok || ex.Kind() != errors.KindReferenceError {
		t.Errorf("missing function error = %v", err)
	}
	_, err = rt.Call("NaN")
	if ex, ok := vm.AsException(err); !ok || ex.Kind() != errors.KindTypeError {
		t.Errorf("calling a number error = %v", err)
	}
}

func TestInterrupt(t *testing.T) {
	rt := newTestRuntime(t, Options{})
	started := make(chan struct{})
	var once sync.Once
	rt.Set("spin", func(machine *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		noop := vm.ObjectValue(machine.NewNativeFunction("noop", 0, func(*vm.VM, vm.Value, []vm.Value) (vm.Value, error) {
			return vm.Undefined, nil
		}))
		for {
			once.Do(func() { close(started) })
			if _, err := machine.Call(noop, vm.Undefined, nil); err != nil {
				return vm.Undefined, err
			}
		}
	})

	done := make(chan error, 1)
	go func() {
		_, err := rt.Call("spin")
		done <- err
	}()
	<-started
	rt.Interrupt()
	if err := <-done; !goerrors.Is(err, vm.ErrInterrupted) {
		t.Fatalf("spin returned %v, want ErrInterrupted", err)
	}

	// The flag is cleared so the runtime keeps working
	got, err := rt.Call("parseFloat", "1.5")
	if err != nil || got.AsFloat() != 1.5 {
		t.Errorf("after interrupt: %s, %v", got.Inspect(), err)
	}
}

func TestInterruptAfterLastCallIsCleared(t *testing.T) {
	rt := newTestRuntime(t, Options{})
	tests := []struct {
		name string
		fn   func(machine *vm.VM) error
	}{
		{"no call after interrupt", func(machine *vm.VM) error {
			rt.Interrupt()
			return nil
		}},
		{"error returned after interrupt", func(machine *vm.VM) error {
			rt.Interrupt()
			return goerrors.New("host failure")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt.Do(tt.fn)
			rt.Do(func(machine *vm.VM) error {
				if machine.Interrupted() {
					t.Error("interrupt is still pending after Do returned")
				}
				return nil
			})
			got, err := rt.Call("parseFloat", "1.5")
			if err != nil || got.AsFloat() != 1.5 {
				t.Errorf("next call: %s, %v", got.Inspect(), err)
			}
		})
	}
}

func TestDoSerializesAccess(t *testing.T) {
	rt := newTestRuntime(t, Options{})
	rt.Set("counter", 0)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				rt.Do(func(machine *vm.VM) error {
					v, _ := machine.GetGlobal("counter")
					return machine.SetGlobal("counter", vm.NumberValue(v.AsFloat()+1))
				})
			}
		}()
	}
	wg.Wait()
	if got, _ := rt.Get("counter"); got != float64(400) {
		t.Errorf("counter = %v, want 400", got)
	}
}

func TestStrictOption(t *testing.T) {
	rt := newTestRuntime(t, Options{VM: vm.Options{Strict: true}})
	err := rt.Do(func(machine *vm.VM) error {
		return machine.Put(machine.GlobalObject(), "NaN", vm.NumberValue(1), machine.Strict())
	})
	if ex, ok := vm.AsException(err); !ok || ex.Kind() != errors.KindTypeError {
		t.Errorf("strict write to NaN = %v", err)
	}
	v, _ := rt.Global("NaN")
	if !math.IsNaN(v.AsFloat()) {
		t.Errorf("NaN = %s", v.Inspect())
	}
}

func TestFprintResult(t *testing.T) {
	rt := newTestRuntime(t, Options{})
	tests := []struct {
		name    string
		value   vm.Value
		err     error
		ok      bool
		out     string
		errText string
	}{
		{"value", vm.NewString("hi"), nil, true, "hi\n", ""},
		{"undefined", vm.Undefined, nil, true, "", ""},
		{"go error", vm.Undefined, goerrors.New("disk full"), false, "", "Error: disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			if ok := rt.FprintResult(&out, &errOut, "", tt.value, tt.err); ok != tt.ok {
				t.Errorf("ok = %v, want %v", ok, tt.ok)
			}
			if out.String() != tt.out {
				t.Errorf("stdout = %q, want %q", out.String(), tt.out)
			}
			if !strings.Contains(errOut.String(), tt.errText) {
				t.Errorf("stderr = %q, want it to contain %q", errOut.String(), tt.errText)
			}
		})
	}

	_, err := rt.Call("nope")
	var errOut bytes.Buffer
	rt.FprintResult(&bytes.Buffer{}, &errOut, "", vm.Undefined, err)
	if !strings.Contains(errOut.String(), "ReferenceError: nope is not defined") {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestAsCoreError(t *testing.T) {
	plain := goerrors.New("boom")
	core := AsCoreError(plain)
	if core.Kind() != errors.KindError || !goerrors.Is(core, plain) {
		t.Errorf("AsCoreError(plain) = %v", core)
	}
	script := errors.New(errors.KindRangeError, "bad")
	if got := AsCoreError(script); got != errors.CoreError(script) {
		t.Errorf("AsCoreError should pass script errors through, got %v", got)
	}
}
