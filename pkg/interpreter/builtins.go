package interpreter

import (
	"fmt"
	"sort"

	"github.com/monkeylang/monkey/pkg/lexer"
	"github.com/monkeylang/monkey/pkg/macro"
	"github.com/monkeylang/monkey/pkg/parser"
	"github.com/monkeylang/monkey/pkg/runtime"
)

// builtinNames is the fixed built-in surface (spec.md §6), plus `import`
// (SPEC_FULL.md §3.3). `quote` is listed here so identifier lookup resolves
// it to a BuiltinKey, but it is special-cased in evalCall and never reaches
// callBuiltin.
var builtinNames = map[string]bool{
	"len":    true,
	"first":  true,
	"last":   true,
	"rest":   true,
	"push":   true,
	"puts":   true,
	"quote":  true,
	"import": true,
}

func isBuiltin(name string) bool { return builtinNames[name] }

func arityError(got, want int) runtime.Value {
	suffix := "s"
	if want == 1 {
		suffix = ""
	}
	return runtime.NewError("Wrong number of arguments. Got %d arguments, want %d argument%s", got, want, suffix)
}

func (ip *Interpreter) callBuiltin(name string, args []runtime.Value, env *runtime.Environment) runtime.Value {
	switch name {
	case "len":
		return biLen(args)
	case "first":
		return biFirst(args)
	case "last":
		return biLast(args)
	case "rest":
		return biRest(args)
	case "push":
		return biPush(args)
	case "puts":
		return ip.biPuts(args)
	case "import":
		return ip.biImport(args)
	default:
		return runtime.NewError("Unknown symbol: %s", name)
	}
}

func biLen(args []runtime.Value) runtime.Value {
	if len(args) != 1 {
		return arityError(len(args), 1)
	}
	switch v := args[0].(type) {
	case runtime.Array:
		return runtime.Int{Value: int64(len(v.Elements))}
	case runtime.String:
		return runtime.Int{Value: int64(len(v.Value))}
	default:
		return runtime.NewError("`len` not supported for argument")
	}
}

func biFirst(args []runtime.Value) runtime.Value {
	if len(args) != 1 {
		return arityError(len(args), 1)
	}
	switch v := args[0].(type) {
	case runtime.Array:
		if len(v.Elements) == 0 {
			return runtime.UnitValue
		}
		return v.Elements[0]
	case runtime.String:
		if len(v.Value) == 0 {
			return runtime.Character{Value: 0}
		}
		return runtime.Character{Value: v.Value[0]}
	default:
		return runtime.NewError("`first` not supported for argument")
	}
}

func biLast(args []runtime.Value) runtime.Value {
	if len(args) != 1 {
		return arityError(len(args), 1)
	}
	switch v := args[0].(type) {
	case runtime.Array:
		if len(v.Elements) == 0 {
			return runtime.UnitValue
		}
		return v.Elements[len(v.Elements)-1]
	case runtime.String:
		if len(v.Value) == 0 {
			return runtime.Character{Value: 0}
		}
		return runtime.Character{Value: v.Value[len(v.Value)-1]}
	default:
		return runtime.NewError("`last` not supported for argument")
	}
}

func biRest(args []runtime.Value) runtime.Value {
	if len(args) != 1 {
		return arityError(len(args), 1)
	}
	switch v := args[0].(type) {
	case runtime.Array:
		if len(v.Elements) > 1 {
			tail := make([]runtime.Value, len(v.Elements)-1)
			copy(tail, v.Elements[1:])
			return runtime.Array{Elements: tail}
		}
		return runtime.Array{Elements: []runtime.Value{}}
	case runtime.String:
		if len(v.Value) > 1 {
			return runtime.String{Value: v.Value[1:]}
		}
		return runtime.Character{Value: 0}
	default:
		return runtime.Character{Value: 0}
	}
}

func biPush(args []runtime.Value) runtime.Value {
	if len(args) != 2 {
		return arityError(len(args), 2)
	}
	arr, ok := args[0].(runtime.Array)
	if !ok {
		return runtime.NewError("argument to `push` must be array")
	}
	newElems := make([]runtime.Value, len(arr.Elements)+1)
	copy(newElems, arr.Elements)
	newElems[len(arr.Elements)] = args[1]
	return runtime.Array{Elements: newElems}
}

func (ip *Interpreter) biPuts(args []runtime.Value) runtime.Value {
	for _, a := range args {
		fmt.Fprintln(ip.Stdout, runtime.Print(a, ip.Tokens))
	}
	return runtime.UnitValue
}

// biImport resolves the `import(name)` builtin (SPEC_FULL.md §3.3): it
// fetches and evaluates a dependency's entry script once per run, caching
// the resulting Map of its top-level let bindings.
func (ip *Interpreter) biImport(args []runtime.Value) runtime.Value {
	if len(args) != 1 {
		return arityError(len(args), 1)
	}
	name, ok := args[0].(runtime.String)
	if !ok {
		return runtime.NewError("argument to `import` must be string")
	}

	if cached, ok := ip.moduleCache[name.Value]; ok {
		return cached
	}

	if ip.Importer == nil {
		return runtime.NewError("Unknown module: %s", name.Value)
	}
	src, err := ip.Importer.Load(name.Value)
	if err != nil {
		return runtime.NewError("Unknown module: %s (%s)", name.Value, err)
	}

	modTokens := lexer.All(src)
	p := parser.New(modTokens)
	prog := p.Parse()
	if len(p.Errors()) > 0 {
		return runtime.NewError("Module %s failed to parse: %s", name.Value, p.Errors()[0])
	}

	modEnv := ip.stdlibRoot.Extend()
	modMacroEnv := runtime.NewEnvironment(nil)
	prog = macro.DefineMacros(prog, modTokens, modMacroEnv)

	childInterp := &Interpreter{
		Tokens:      modTokens,
		Stdout:      ip.Stdout,
		Importer:    ip.Importer,
		moduleCache: ip.moduleCache,
		stdlibRoot:  ip.stdlibRoot,
	}
	prog = macro.ExpandMacros(prog, modTokens, modMacroEnv, childInterp.Eval)
	childInterp.RunProgram(prog, modEnv)

	result := exportBindings(modEnv)
	ip.moduleCache[name.Value] = result
	return result
}

// exportBindings returns the current scope's own bindings (not outer
// scopes) as a Map, in sorted-name order for deterministic printing.
func exportBindings(env *runtime.Environment) *runtime.Map {
	bindings := env.Bindings()
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)

	m := runtime.NewMap()
	for _, name := range names {
		key, _ := runtime.HashOf(runtime.String{Value: name})
		m.Set(key, runtime.MapEntry{Key: runtime.String{Value: name}, Value: bindings[name]})
	}
	return m
}
