// Package runtime defines the evaluator's closed value domain (spec.md §3):
// the EvalResult sum, hashmap keying, and lexical Environment.
package runtime

import (
	"fmt"
	"strings"

	"github.com/monkeylang/monkey/pkg/ast"
	"github.com/monkeylang/monkey/pkg/token"
	"github.com/zeebo/xxh3"
)

// Kind tags a Value's concrete variant.
type Kind int

const (
	KindInt Kind = iota
	KindBool
	KindString
	KindChar
	KindUnit
	KindArray
	KindMap
	KindFunction
	KindMacro
	KindQuote
	KindBuiltinKey
	KindReturn
	KindError
)

var kindNames = map[Kind]string{
	KindInt:        "INTEGER",
	KindBool:       "BOOLEAN",
	KindString:     "STRING",
	KindChar:       "CHARACTER",
	KindUnit:       "UNIT",
	KindArray:      "ARRAY",
	KindMap:        "MAP",
	KindFunction:   "FUNCTION",
	KindMacro:      "MACRO",
	KindQuote:      "QUOTE",
	KindBuiltinKey: "BUILTIN",
	KindReturn:     "RETURN",
	KindError:      "ERROR",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// Value is any member of the evaluator's closed result sum.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type Int struct{ Value int64 }

func (Int) Kind() Kind { return KindInt }

type Bool struct{ Value bool }

func (Bool) Kind() Kind { return KindBool }

type String struct{ Value string }

func (String) Kind() Kind { return KindString }

// Character holds a single byte, per spec.md's u8-sized Character variant —
// it exists mainly as the sentinel `first`/`last` return on an empty string.
type Character struct{ Value byte }

func (Character) Kind() Kind { return KindChar }

// Unit is the sole inhabitant of the Unit kind; there is exactly one
// meaningful value, exposed as the package-level UnitValue.
type Unit struct{}

func (Unit) Kind() Kind { return KindUnit }

// UnitValue is the shared Unit instance — every "nothing to return" result
// uses this rather than allocating a fresh Unit{}.
var UnitValue = Unit{}

//-----------------------------------------------------------------------------
// Collections
//-----------------------------------------------------------------------------

type Array struct{ Elements []Value }

func (Array) Kind() Kind { return KindArray }

// MapEntry pairs the original (unhashed) key value with its bound value, so
// that iteration and printing can recover the key's print form.
type MapEntry struct {
	Key   Value
	Value Value
}

type Map struct {
	Entries map[HashKey]MapEntry
	// Order preserves insertion order for deterministic printing.
	Order []HashKey
}

func NewMap() *Map {
	return &Map{Entries: make(map[HashKey]MapEntry)}
}

func (m *Map) Kind() Kind { return KindMap }

// Set inserts or overwrites a key/value pair, tracking first-insertion
// order.
func (m *Map) Set(key HashKey, entry MapEntry) {
	if _, exists := m.Entries[key]; !exists {
		m.Order = append(m.Order, key)
	}
	m.Entries[key] = entry
}

//-----------------------------------------------------------------------------
// Functions, macros, quotes
//-----------------------------------------------------------------------------

type Function struct {
	Params []*ast.Identifier
	Body   *ast.Block
	Env    *Environment
}

func (*Function) Kind() Kind { return KindFunction }

// Macro is only ever visible inside the macro pass; the evaluator never
// encounters one once Phase A has erased macro-definition statements.
type Macro struct {
	Params []*ast.Identifier
	Body   *ast.Block
	Env    *Environment
}

func (*Macro) Kind() Kind { return KindMacro }

// Quote is the payload of quote(...): a frozen AST expression, printed via
// its own Show contract.
type Quote struct{ Node ast.Expression }

func (Quote) Kind() Kind { return KindQuote }

// BuiltinKey is a reference to one of the fixed built-ins (pkg/interpreter's
// builtin table); resolved by name at call time.
type BuiltinKey struct{ Name string }

func (BuiltinKey) Kind() Kind { return KindBuiltinKey }

//-----------------------------------------------------------------------------
// Control-flow and error envelopes
//-----------------------------------------------------------------------------

// Return wraps a value signalling that a return statement is propagating up
// through block/function evaluation. It is unwrapped at the call boundary
// and at the top of the top-level statement loop.
type Return struct{ Value Value }

func (Return) Kind() Kind { return KindReturn }

// Shared true/false return atoms, per spec.md §4.2's efficiency note —
// evalReturn hands out one of these for every Bool return value instead of
// building a new envelope.
var (
	ReturnTrue  = Return{Value: Bool{Value: true}}
	ReturnFalse = Return{Value: Bool{Value: false}}
)

type Error struct{ Message string }

func (Error) Kind() Kind { return KindError }

func NewError(format string, args ...any) Error {
	return Error{Message: fmt.Sprintf(format, args...)}
}

//-----------------------------------------------------------------------------
// Hashing
//-----------------------------------------------------------------------------

// HashType tags which variant a HashKey was derived from. Distinct types
// with equal numeric payloads must NOT collide, so the type participates in
// equality via struct field comparison.
type HashType int

const (
	HashInt HashType = iota
	HashBool
	HashString
)

// HashKey is the map key used by Map — comparable so it can key a native Go
// map directly.
type HashKey struct {
	Payload int64
	Type    HashType
}

// HashOf derives the HashKey for a value that may legally be used as a hash
// key (Int, Bool, String); for any other value it returns ok=false.
func HashOf(v Value) (HashKey, bool) {
	switch val := v.(type) {
	case Int:
		return HashKey{Payload: val.Value, Type: HashInt}, true
	case Bool:
		payload := int64(0)
		if val.Value {
			payload = 1
		}
		return HashKey{Payload: payload, Type: HashBool}, true
	case String:
		// xxh3 gives a deterministic 64-bit hash so equal strings always
		// collide onto the same key, regardless of process or platform.
		h := xxh3.HashString(val.Value)
		return HashKey{Payload: int64(h), Type: HashString}, true
	default:
		return HashKey{}, false
	}
}

//-----------------------------------------------------------------------------
// Printing
//-----------------------------------------------------------------------------

// Print renders a Value's final-result print form, per spec.md §6. tokens
// is the token view the program was parsed against; it is only consulted
// when printing a Quote, whose canonical form is AST Show.
func Print(v Value, tokens []token.Token) string {
	switch val := v.(type) {
	case Int:
		return fmt.Sprintf("%d", val.Value)
	case Bool:
		return fmt.Sprintf("%t", val.Value)
	case String:
		return val.Value
	case Character:
		return fmt.Sprintf("'%c'", val.Value)
	case Unit:
		return ""
	case Array:
		parts := make([]string, len(val.Elements))
		for i, e := range val.Elements {
			parts[i] = Print(e, tokens)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *Map:
		parts := make([]string, 0, len(val.Order))
		for _, k := range val.Order {
			entry := val.Entries[k]
			parts = append(parts, fmt.Sprintf("%s: %s", Print(entry.Key, tokens), Print(entry.Value, tokens)))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case Quote:
		return val.Node.Show(tokens)
	case Error:
		return val.Message
	case Return:
		return Print(val.Value, tokens)
	case *Function:
		return "<Function>"
	case *Macro:
		return "<Macro>"
	case BuiltinKey:
		return "<Builtin>"
	default:
		return ""
	}
}
