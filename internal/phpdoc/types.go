package phpdoc

import (
	"fmt"
	"strings"
)

// Type is a parsed PHPDoc type expression.
type Type interface {
	String() string
}

// Name is a single type: a keyword, a class name, an array shape or a generic.
// Anything that is not a union or a nullable is kept as one opaque name.
type Name struct {
	Value string
}

func (n Name) String() string { return n.Value }

// Compound is a union of alternatives ("string|int").
type Compound struct {
	Types []Type
}

func (c Compound) String() string {
	parts := make([]string, len(c.Types))
	for i, t := range c.Types {
		parts[i] = t.String()
	}
	return strings.Join(parts, "|")
}

// Nullable is the "?T" shorthand.
type Nullable struct {
	Actual Type
}

func (n Nullable) String() string { return "?" + n.Actual.String() }

// Resolve flattens a type into alternative type names.
// A compound yields each alternative, a nullable yields the actual type
// followed by "null", anything else yields a single name.
func Resolve(t Type) []string {
	switch v := t.(type) {
	case Compound:
		var names []string
		for _, alt := range v.Types {
			names = append(names, Resolve(alt)...)
		}
		return names
	case Nullable:
		return append(Resolve(v.Actual), "null")
	case nil:
		return nil
	default:
		return []string{t.String()}
	}
}

// ParseType parses a type expression such as "string|int", "?Foo",
// "array<int, string>" or "(A|B)[]".
func ParseType(expr string) (Type, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty type expression")
	}
	if err := checkBalanced(expr); err != nil {
		return nil, err
	}

	alternatives := splitTopLevel(expr, '|')
	if len(alternatives) == 1 {
		return parseSingle(alternatives[0])
	}

	compound := Compound{Types: make([]Type, 0, len(alternatives))}
	for _, alt := range alternatives {
		t, err := parseSingle(alt)
		if err != nil {
			return nil, err
		}
		compound.Types = append(compound.Types, t)
	}
	return compound, nil
}

func parseSingle(expr string) (Type, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty alternative in union")
	}

	if strings.HasPrefix(expr, "?") {
		inner, err := parseSingle(expr[1:])
		if err != nil {
			return nil, err
		}
		return Nullable{Actual: inner}, nil
	}

	// "(A|B)" with nothing after the closing paren is just a grouped union.
	if strings.HasPrefix(expr, "(") && matchingClose(expr, 0) == len(expr)-1 {
		return ParseType(expr[1 : len(expr)-1])
	}

	return Name{Value: expr}, nil
}

// splitTopLevel splits on sep outside of any bracket pair.
func splitTopLevel(expr string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(expr); i++ {
		switch expr[i] {
		case '<', '(', '{', '[':
			depth++
		case '>', ')', '}', ']':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, expr[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, expr[start:])
}

func checkBalanced(expr string) error {
	var stack []byte
	pairs := map[byte]byte{'>': '<', ')': '(', '}': '{', ']': '['}
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch c {
		case '<', '(', '{', '[':
			stack = append(stack, c)
		case '>', ')', '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != pairs[c] {
				return fmt.Errorf("unbalanced %q at offset %d in %q", c, i, expr)
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		return fmt.Errorf("unclosed %q in %q", stack[len(stack)-1], expr)
	}
	return nil
}

// matchingClose returns the index of the bracket closing the one at open.
func matchingClose(expr string, open int) int {
	depth := 0
	for i := open; i < len(expr); i++ {
		switch expr[i] {
		case '<', '(', '{', '[':
			depth++
		case '>', ')', '}', ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// scanTypeToken returns the leading type expression of a tag body and the
// remainder. Whitespace inside brackets belongs to the type.
func scanTypeToken(body string) (string, string) {
	body = strings.TrimLeft(body, " \t")
	depth := 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '<', '(', '{', '[':
			depth++
		case '>', ')', '}', ']':
			depth--
		case ' ', '\t', '\n':
			if depth <= 0 {
				return body[:i], strings.TrimSpace(body[i:])
			}
		}
	}
	return body, ""
}
