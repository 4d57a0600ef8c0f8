package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// knownKeysCache maps a struct type to the JSON keys its tagged fields own.
var knownKeysCache sync.Map // reflect.Type → map[string]struct{}

// knownKeys returns the JSON object keys claimed by the tagged fields of t.
func knownKeys(t reflect.Type) map[string]struct{} {
	if cached, ok := knownKeysCache.Load(t); ok {
		return cached.(map[string]struct{})
	}

	keys := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if name, _, ok := jsonName(t.Field(i)); ok {
			keys[name] = struct{}{}
		}
	}

	knownKeysCache.Store(t, keys)
	return keys
}

// jsonName returns the object key of a tagged field and whether the tag
// carries omitempty. Untagged and "-" fields report ok == false.
func jsonName(f reflect.StructField) (name string, omitEmpty, ok bool) {
	tag := f.Tag.Get("json")
	if tag == "" || tag == "-" || !f.IsExported() {
		return "", false, false
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		return "", false, false
	}
	for _, opt := range strings.Split(opts, ",") {
		if opt == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, true
}

// keySet records which claimed keys a decoded object carried, mapped to
// whether the source value was null. A nil set marks a value built in code
// rather than decoded.
type keySet map[string]bool

// emits reports whether the field named name with value v belongs in the
// encoded object.
//
// A decoded value emits exactly the keys it was read with, whatever they
// hold, plus keys set since. A value built in code follows the usual
// omitempty rules.
func (s keySet) emits(name string, v reflect.Value, omitEmpty bool) bool {
	if s == nil {
		return !omitEmpty || !isEmptyValue(v)
	}
	if _, ok := s[name]; ok {
		return true
	}
	return !isEmptyValue(v)
}

// forget marks name as absent, so a cleared field is not written back.
func (s keySet) forget(name string) {
	delete(s, name)
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	}
	return false
}

// decodeObject decodes a JSON object into a generic map, keeping numbers as
// json.Number so integers never pass through float64.
func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

// splitExtra decodes data into the plain struct pointed to by known. It
// returns the object keys its fields do not claim and the claimed keys the
// object carried.
func splitExtra(data []byte, known any) (map[string]any, keySet, error) {
	if err := json.Unmarshal(data, known); err != nil {
		return nil, nil, err
	}

	all, err := decodeObject(data)
	if err != nil {
		return nil, nil, err
	}

	claimed := knownKeys(reflect.TypeOf(known).Elem())
	present := make(keySet, len(claimed))
	var extra map[string]any
	for k, v := range all {
		if _, ok := claimed[k]; ok {
			present[k] = v == nil
			continue
		}
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[k] = v
	}
	return extra, present, nil
}

// mergeExtra encodes the plain struct known field by field and adds the
// extra keys its fields do not claim. Keys set on the struct always win.
//
// With a present set (a decoded value) every key the source carried is
// written back, including empty strings, and a null stays null until the
// field is given a value. Without one, fields that encode to null are
// dropped, so nil slices and pointers read as absent while empty slices
// survive.
func mergeExtra(known any, present keySet, extra map[string]any) ([]byte, error) {
	v := reflect.ValueOf(known)
	t := v.Type()
	claimed := knownKeys(t)

	obj := make(map[string]json.RawMessage, len(claimed)+len(extra))
	for k, val := range extra {
		if _, ok := claimed[k]; ok {
			continue
		}
		raw, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("encode %T.%s: %w", known, k, err)
		}
		obj[k] = raw
	}

	for i := 0; i < t.NumField(); i++ {
		name, omitEmpty, ok := jsonName(t.Field(i))
		if !ok {
			continue
		}
		fv := v.Field(i)
		if !present.emits(name, fv, omitEmpty) {
			continue
		}
		if present[name] && isEmptyValue(fv) {
			obj[name] = nullJSON
			continue
		}
		raw, err := json.Marshal(fv.Interface())
		if err != nil {
			return nil, fmt.Errorf("encode %T.%s: %w", known, name, err)
		}
		if present == nil && bytes.Equal(raw, nullJSON) {
			continue
		}
		obj[name] = raw
	}
	return json.Marshal(obj)
}

var nullJSON = []byte("null")

// ToFields converts any JSON-serialisable entity to its field map.
// Projection and golden comparisons work on this view.
func ToFields(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", v, err)
	}
	obj, err := decodeObject(data)
	if err != nil {
		return nil, fmt.Errorf("decode %T: %w", v, err)
	}
	return obj, nil
}
