package codec

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrUnsupportedType is returned for values with no wire representation.
	ErrUnsupportedType = errors.New("codec: unsupported value type")

	// ErrInvalidKey is returned for empty top-level keys or keys containing '|'.
	ErrInvalidKey = errors.New("codec: invalid key")
)

// Encode serializes attrs into the wire format. Keys are emitted in sorted
// order so equal maps always encode to equal bytes.
func Encode(attrs map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		if k == "" || strings.IndexByte(k, '|') >= 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidKey, k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	for _, k := range keys {
		buf.WriteString(k)
		buf.WriteByte('|')
		if err := encodeValue(&buf, attrs[k]); err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
	}
	return buf.Bytes(), nil
}

// MustEncode is Encode for values known to be encodable, such as records
// built by the domain package.
func MustEncode(attrs map[string]any) []byte {
	b, err := Encode(attrs)
	if err != nil {
		panic(err)
	}
	return b
}

func encodeValue(buf *bytes.Buffer, v any) error {
	switch x := v.(type) {
	case nil:
		buf.WriteString("N;")
		return nil
	case bool:
		if x {
			buf.WriteString("b:1;")
		} else {
			buf.WriteString("b:0;")
		}
		return nil
	case int64:
		writeInt(buf, x)
		return nil
	case int:
		writeInt(buf, int64(x))
		return nil
	case float64:
		writeFloat(buf, x)
		return nil
	case string:
		writeString(buf, x)
		return nil
	case []byte:
		writeString(buf, string(x))
		return nil
	case []any:
		fmt.Fprintf(buf, "a:%d:{", len(x))
		for i, item := range x {
			writeInt(buf, int64(i))
			if err := encodeValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case map[string]any:
		return writeMap(buf, x)
	}
	return encodeReflect(buf, reflect.ValueOf(v))
}

func encodeReflect(buf *bytes.Buffer, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			buf.WriteString("N;")
			return nil
		}
		return encodeValue(buf, rv.Elem().Interface())
	case reflect.Bool:
		return encodeValue(buf, rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		writeInt(buf, rv.Int())
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return fmt.Errorf("%w: %d overflows int64", ErrUnsupportedType, u)
		}
		writeInt(buf, int64(u))
		return nil
	case reflect.Float32, reflect.Float64:
		writeFloat(buf, rv.Float())
		return nil
	case reflect.String:
		writeString(buf, rv.String())
		return nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			buf.WriteString("a:0:{}")
			return nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			writeString(buf, string(b))
			return nil
		}
		fmt.Fprintf(buf, "a:%d:{", rv.Len())
		for i := 0; i < rv.Len(); i++ {
			writeInt(buf, int64(i))
			if err := encodeValue(buf, rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("%w: map key %s", ErrUnsupportedType, rv.Type().Key())
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return writeMap(buf, m)
	}
	return fmt.Errorf("%w: %T", ErrUnsupportedType, rv.Interface())
}

func writeMap(buf *bytes.Buffer, m map[string]any) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(buf, "a:%d:{", len(m))
	for _, k := range keys {
		writeString(buf, k)
		if err := encodeValue(buf, m[k]); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeInt(buf *bytes.Buffer, n int64) {
	buf.WriteString("i:")
	buf.WriteString(strconv.FormatInt(n, 10))
	buf.WriteByte(';')
}

func writeFloat(buf *bytes.Buffer, f float64) {
	buf.WriteString("d:")
	switch {
	case math.IsNaN(f):
		buf.WriteString("NAN")
	case math.IsInf(f, 1):
		buf.WriteString("INF")
	case math.IsInf(f, -1):
		buf.WriteString("-INF")
	default:
		buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	}
	buf.WriteByte(';')
}

func writeString(buf *bytes.Buffer, s string) {
	buf.WriteString("s:")
	buf.WriteString(strconv.Itoa(len(s)))
	buf.WriteString(`:"`)
	buf.WriteString(s)
	buf.WriteString(`";`)
}
