package dbal

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParamType is the declared type of a bind parameter.
type ParamType int

const (
	ParamString ParamType = iota
	ParamInt
	ParamBool
	ParamNull
	ParamLob
)

func (t ParamType) String() string {
	switch t {
	case ParamString:
		return "string"
	case ParamInt:
		return "int"
	case ParamBool:
		return "bool"
	case ParamNull:
		return "null"
	case ParamLob:
		return "lob"
	default:
		return "unknown"
	}
}

// InferParamType derives a ParamType from the runtime type of v.
// Anything that is not an integer, boolean, nil or byte blob binds as a string.
func InferParamType(v any) ParamType {
	switch v.(type) {
	case nil:
		return ParamNull
	case bool:
		return ParamBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return ParamInt
	case []byte:
		return ParamLob
	default:
		return ParamString
	}
}

// BindParameter is one (placeholder, value, type) triple. Name is either a
// stringified 1-based position or a named placeholder including its ":" marker.
type BindParameter struct {
	Name  string
	Value any
	Type  ParamType
}

// NewBindParameter builds a parameter with its type inferred from value.
func NewBindParameter(name string, value any) BindParameter {
	return BindParameter{Name: name, Value: value, Type: InferParamType(value)}
}

// Positional reports whether the parameter is matched by position rather
// than by placeholder name.
func (p BindParameter) Positional() bool {
	return !strings.HasPrefix(p.Name, ":")
}

// Position returns the 1-based position of a positional parameter, or 0.
func (p BindParameter) Position() int {
	if !p.Positional() {
		return 0
	}

	n, err := strconv.Atoi(p.Name)

	if err != nil {
		return 0
	}

	return n
}

// BindParameterList is an ordered sequence of bind parameters.
type BindParameterList []BindParameter

// NewBindParameterList normalizes args into a BindParameterList.
//
// Accepted forms:
//   - nil → empty list
//   - BindParameterList or []BindParameter → returned as-is (idempotent)
//   - []any → positional parameters, named "1".."n"
//   - map[string]any → named parameters in lexical key order, ":" marker added
//     when missing
//
// Types are inferred from each value unless the input already carried them.
func NewBindParameterList(args any) (BindParameterList, error) {
	switch args := args.(type) {
	case nil:
		return nil, nil

	case BindParameterList:
		return args, nil

	case []BindParameter:
		return BindParameterList(args), nil

	case []any:
		var params = make(BindParameterList, 0, len(args))

		for i, v := range args {
			params = append(params, NewBindParameter(strconv.Itoa(i+1), v))
		}

		return params, nil

	case map[string]any:
		var names = make([]string, 0, len(args))

		for name := range args {
			names = append(names, name)
		}

		sort.Strings(names)

		var params = make(BindParameterList, 0, len(args))

		for _, name := range names {
			var marked = name

			if !strings.HasPrefix(marked, ":") {
				marked = ":" + marked
			}

			params = append(params, NewBindParameter(marked, args[name]))
		}

		return params, nil

	default:
		return nil, fmt.Errorf("dbal: unsupported parameter collection type %T", args)
	}
}

// LogValue renders the list for log entries.
func (l BindParameterList) LogValue() string {
	if len(l) == 0 {
		return ""
	}

	var b strings.Builder

	for i, p := range l {
		if i > 0 {
			b.WriteString(", ")
		}

		fmt.Fprintf(&b, "%s=%v(%s)", p.Name, p.Value, p.Type)
	}

	return b.String()
}
