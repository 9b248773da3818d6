package builtins

import (
	"fmt"
	"sort"

	"jscore/pkg/vm"
)

const debugBuiltins = false

// GetStandardInitializers returns all built-in initializers sorted by priority
func GetStandardInitializers() []BuiltinInitializer {
	initializers := []BuiltinInitializer{
		&GlobalsInitializer{},
		&ObjectInitializer{},
		&FunctionInitializer{},
		&ArrayInitializer{},
		&ErrorInitializer{},
		&StringInitializer{},
		&NumberInitializer{},
		&BooleanInitializer{},
		&RegExpInitializer{},
		&JSONInitializer{},
	}

	// Sort by priority (lower numbers first)
	sort.SliceStable(initializers, func(i, j int) bool {
		return initializers[i].Priority() < initializers[j].Priority()
	})
	return initializers
}

// Install runs every standard initializer against the VM's realm.
func Install(machine *vm.VM) error {
	realm := machine.Realm()
	ctx := &RuntimeContext{
		VM:    machine,
		Realm: realm,
		DefineGlobal: func(name string, value vm.Value) error {
			realm.GlobalObject.SetInternal(name, value)
			return nil
		},
	}
	for _, bi := range GetStandardInitializers() {
		if debugBuiltins {
			fmt.Printf("[BUILTINS] initializing %s (priority %d)\n", bi.Name(), bi.Priority())
		}
		if err := bi.InitRuntime(ctx); err != nil {
			return fmt.Errorf("builtins: %s: %w", bi.Name(), err)
		}
	}
	return nil
}
