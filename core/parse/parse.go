package parse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"github.com/leofalp/jsonmend/core/structural"
)

// Into converts value into T.
//
// It first decodes value through its JSON form. When that fails it unwraps
// schema-like envelopes and tries again, and finally converts scalar text
// ("42", "true") into scalar targets.
//
// Example usage:
//
//	type Person struct {
//	    Name string `json:"name"`
//	    Age  int    `json:"age"`
//	}
//
//	person, err := parse.Into[Person](value)
//	count, err := parse.Into[int](value) // accepts 42, "42" or {"type":"integer","value":42}
func Into[T any](value structural.Value) (T, error) {
	var result T
	if typed, ok := value.(T); ok {
		return typed, nil
	}

	err := decode(value, &result)
	if err == nil {
		return result, nil
	}

	// Models sometimes confuse a JSON schema with the data it describes.
	unwrapped := unwrapSchemaValues(value)
	if !reflect.DeepEqual(unwrapped, value) {
		var retry T
		if decode(unwrapped, &retry) == nil {
			return retry, nil
		}
	}

	if text, ok := scalarText(unwrapped); ok {
		var scalar T
		if scalarErr := setScalar(reflect.ValueOf(&scalar).Elem(), text); scalarErr == nil {
			return scalar, nil
		}
	}

	return result, fmt.Errorf("parse: cannot convert %T into %T: %w", value, result, err)
}

// decode round-trips value through JSON into out, keeping numbers exact.
func decode(value structural.Value, out any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	return decoder.Decode(out)
}

// scalarText returns the textual form of a scalar value.
func scalarText(value structural.Value) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), true
	default:
		return "", false
	}
}

// setScalar parses text into a string, bool, integer or float target.
func setScalar(target reflect.Value, text string) error {
	switch target.Kind() {
	case reflect.String:
		target.SetString(text)
		return nil

	case reflect.Bool:
		val, err := strconv.ParseBool(text)
		if err != nil {
			return fmt.Errorf("failed to parse content as bool: %w", err)
		}
		target.SetBool(val)
		return nil

	case reflect.Float32, reflect.Float64:
		val, err := strconv.ParseFloat(text, target.Type().Bits())
		if err != nil {
			return fmt.Errorf("failed to parse content as float: %w", err)
		}
		target.SetFloat(val)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		val, err := strconv.ParseInt(text, 10, target.Type().Bits())
		if err != nil {
			return fmt.Errorf("failed to parse content as int: %w", err)
		}
		target.SetInt(val)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		val, err := strconv.ParseUint(text, 10, target.Type().Bits())
		if err != nil {
			return fmt.Errorf("failed to parse content as uint: %w", err)
		}
		target.SetUint(val)
		return nil

	default:
		return fmt.Errorf("unsupported scalar kind %s", target.Kind())
	}
}

// unwrapSchemaValues replaces every {"type": ..., "value": ...} object (exactly
// those two keys) with its value, recursively.
//
// Example input:
//
//	{"name": {"type": "string", "value": "John"}, "age": {"type": "integer", "value": 30}}
//
// Example output:
//
//	{"name": "John", "age": 30}
func unwrapSchemaValues(data structural.Value) structural.Value {
	switch v := data.(type) {
	case map[string]any:
		if _, hasType := v["type"]; hasType {
			if value, hasValue := v["value"]; hasValue && len(v) == 2 {
				return unwrapSchemaValues(value)
			}
		}

		result := make(map[string]any, len(v))
		for key, val := range v {
			result[key] = unwrapSchemaValues(val)
		}
		return result

	case []any:
		result := make([]any, len(v))
		for i, val := range v {
			result[i] = unwrapSchemaValues(val)
		}
		return result

	default:
		return data
	}
}
