package ledger

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Value is a JSON-Cadence encoded script argument.
type Value struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// Int encodes a Cadence Int.
func Int(n int) Value {
	return Value{Type: "Int", Value: strconv.Itoa(n)}
}

// UInt8 encodes a Cadence UInt8.
func UInt8(n uint8) Value {
	return Value{Type: "UInt8", Value: strconv.FormatUint(uint64(n), 10)}
}

// String encodes a Cadence String.
func String(s string) Value {
	return Value{Type: "String", Value: s}
}

// Address encodes a Cadence Address.
func Address(addr string) Value {
	return Value{Type: "Address", Value: addr}
}

// Optional encodes a Cadence optional. A nil inner value encodes nil.
func Optional(inner *Value) Value {
	if inner == nil {
		return Value{Type: "Optional", Value: nil}
	}
	return Value{Type: "Optional", Value: *inner}
}

// OptionalAddress encodes an Address? that is nil when addr is empty.
func OptionalAddress(addr string) Value {
	if addr == "" {
		return Optional(nil)
	}
	v := Address(addr)
	return Optional(&v)
}

// OptionalUInt8 encodes a UInt8?.
func OptionalUInt8(n uint8) Value {
	v := UInt8(n)
	return Optional(&v)
}

type encodedValue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

type compositeValue struct {
	ID     string `json:"id"`
	Fields []struct {
		Name  string       `json:"name"`
		Value encodedValue `json:"value"`
	} `json:"fields"`
}

type dictionaryEntry struct {
	Key   encodedValue `json:"key"`
	Value encodedValue `json:"value"`
}

type pathValue struct {
	Domain     string `json:"domain"`
	Identifier string `json:"identifier"`
}

// Decode converts a JSON-Cadence document into plain Go values:
//
//	Void, nil Optional        nil
//	Bool                      bool
//	String, Address, numbers  string
//	Array                     []any
//	Dictionary                map[string]any (keys formatted with %v)
//	Struct, Resource, ...     map[string]any of fields
//	Path                      map[string]any{"domain", "identifier"}
//	Type                      string type id
func Decode(data []byte) (any, error) {
	var v encodedValue
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode json-cadence: %w", err)
	}
	return decodeValue(v)
}

func decodeValue(v encodedValue) (any, error) {
	switch v.Type {
	case "Void":
		return nil, nil

	case "Optional":
		if len(v.Value) == 0 || string(v.Value) == "null" {
			return nil, nil
		}
		var inner encodedValue
		if err := json.Unmarshal(v.Value, &inner); err != nil {
			return nil, fmt.Errorf("decode optional: %w", err)
		}
		return decodeValue(inner)

	case "Bool":
		var b bool
		if err := json.Unmarshal(v.Value, &b); err != nil {
			return nil, fmt.Errorf("decode bool: %w", err)
		}
		return b, nil

	case "String", "Character", "Address",
		"Int", "Int8", "Int16", "Int32", "Int64", "Int128", "Int256",
		"UInt", "UInt8", "UInt16", "UInt32", "UInt64", "UInt128", "UInt256",
		"Word8", "Word16", "Word32", "Word64", "Word128", "Word256",
		"Fix64", "UFix64":
		var s string
		if err := json.Unmarshal(v.Value, &s); err != nil {
			return nil, fmt.Errorf("decode %s: %w", v.Type, err)
		}
		return s, nil

	case "Array":
		var items []encodedValue
		if err := json.Unmarshal(v.Value, &items); err != nil {
			return nil, fmt.Errorf("decode array: %w", err)
		}
		out := make([]any, 0, len(items))
		for i, item := range items {
			decoded, err := decodeValue(item)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			out = append(out, decoded)
		}
		return out, nil

	case "Dictionary":
		var entries []dictionaryEntry
		if err := json.Unmarshal(v.Value, &entries); err != nil {
			return nil, fmt.Errorf("decode dictionary: %w", err)
		}
		out := make(map[string]any, len(entries))
		for _, entry := range entries {
			key, err := decodeValue(entry.Key)
			if err != nil {
				return nil, fmt.Errorf("dictionary key: %w", err)
			}
			value, err := decodeValue(entry.Value)
			if err != nil {
				return nil, fmt.Errorf("dictionary[%v]: %w", key, err)
			}
			out[fmt.Sprint(key)] = value
		}
		return out, nil

	case "Struct", "Resource", "Event", "Contract", "Enum":
		var composite compositeValue
		if err := json.Unmarshal(v.Value, &composite); err != nil {
			return nil, fmt.Errorf("decode %s: %w", v.Type, err)
		}
		out := make(map[string]any, len(composite.Fields))
		for _, field := range composite.Fields {
			value, err := decodeValue(field.Value)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", composite.ID, field.Name, err)
			}
			out[field.Name] = value
		}
		return out, nil

	case "Path":
		var p pathValue
		if err := json.Unmarshal(v.Value, &p); err != nil {
			return nil, fmt.Errorf("decode path: %w", err)
		}
		return map[string]any{"domain": p.Domain, "identifier": p.Identifier}, nil

	case "Type":
		var t struct {
			StaticType json.RawMessage `json:"staticType"`
		}
		if err := json.Unmarshal(v.Value, &t); err != nil {
			return nil, fmt.Errorf("decode type: %w", err)
		}
		var id string
		if json.Unmarshal(t.StaticType, &id) == nil {
			return id, nil
		}
		var st struct {
			TypeID string `json:"typeID"`
		}
		if err := json.Unmarshal(t.StaticType, &st); err != nil {
			return nil, fmt.Errorf("decode static type: %w", err)
		}
		return st.TypeID, nil

	default:
		return nil, fmt.Errorf("unsupported cadence type %q", v.Type)
	}
}
