package csvingest

import (
	"errors"
	"fmt"
	"strings"
)

// ColumnType is the semantic type tag of a column.
type ColumnType int

const (
	TypeText      ColumnType = iota // UTF-8 string
	TypeInteger                     // nullable 64-bit integer
	TypeFloat                       // float64
	TypeTimestamp                   // timestamp without time zone, stored as UTC
)

// String returns the canonical lower-case name of the type.
func (t ColumnType) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeTimestamp:
		return "timestamp"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// IsValid returns true if the ColumnType is a defined value.
func (t ColumnType) IsValid() bool {
	return t >= TypeText && t <= TypeTimestamp
}

// ParseColumnType accepts the canonical names plus the dtype aliases common
// in dataset definitions (Int64, string, float64, datetime64).
func ParseColumnType(s string) (ColumnType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "string", "str", "object":
		return TypeText, nil
	case "integer", "int", "int64", "bigint":
		return TypeInteger, nil
	case "float", "float64", "double", "real":
		return TypeFloat, nil
	case "timestamp", "datetime", "datetime64":
		return TypeTimestamp, nil
	default:
		return TypeText, fmt.Errorf("unknown column type %q: %w", s, ErrInvalidConfig)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t ColumnType) MarshalText() ([]byte, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid column type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ColumnType) UnmarshalText(text []byte) error {
	parsed, err := ParseColumnType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Column is a named, typed column.
type Column struct {
	Name string     `yaml:"name"`
	Type ColumnType `yaml:"type"`
}

func (c Column) String() string {
	return c.Name + ":" + c.Type.String()
}

// Schema is the ordered column declaration of a dataset. Columns found in a
// source but absent from the schema are typed by inference.
type Schema []Column

// Lookup returns the declared column with the given name.
func (s Schema) Lookup(name string) (Column, bool) {
	for _, c := range s {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Names returns the column names in declaration order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// With returns a copy of s where each override replaces the column of the
// same name, or is appended when s has no such column.
func (s Schema) With(overrides ...Column) Schema {
	out := make(Schema, len(s), len(s)+len(overrides))
	copy(out, s)
	for _, o := range overrides {
		replaced := false
		for i := range out {
			if out[i].Name == o.Name {
				out[i] = o
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, o)
		}
	}
	return out
}

// Validate reports empty schemas, blank or duplicate names and undefined types.
func (s Schema) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("schema declares no columns: %w", ErrInvalidConfig)
	}

	var errs []error
	seen := make(map[string]bool, len(s))
	for i, c := range s {
		if strings.TrimSpace(c.Name) == "" {
			errs = append(errs, fmt.Errorf("column %d has an empty name: %w", i, ErrInvalidConfig))
			continue
		}
		if seen[c.Name] {
			errs = append(errs, fmt.Errorf("column %q declared twice: %w", c.Name, ErrInvalidConfig))
		}
		seen[c.Name] = true
		if !c.Type.IsValid() {
			errs = append(errs, fmt.Errorf("column %q has invalid type %d: %w", c.Name, int(c.Type), ErrInvalidConfig))
		}
	}
	return errors.Join(errs...)
}

// ParseColumnDecl parses a "name:type" pair as given to --column.
func ParseColumnDecl(decl string) (Column, error) {
	idx := strings.LastIndex(decl, ":")
	if idx <= 0 || idx == len(decl)-1 {
		return Column{}, fmt.Errorf("invalid column %q, expected name:type: %w", decl, ErrInvalidConfig)
	}
	name := strings.TrimSpace(decl[:idx])
	if name == "" {
		return Column{}, fmt.Errorf("invalid column %q, empty name: %w", decl, ErrInvalidConfig)
	}
	typ, err := ParseColumnType(decl[idx+1:])
	if err != nil {
		return Column{}, err
	}
	return Column{Name: name, Type: typ}, nil
}
