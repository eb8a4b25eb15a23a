package filterable

import (
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
	"unsafe"

	"github.com/pkg/errors"
)

const dottedPath = `(?:\w+\.)*\w+`

var identReg = regexp.MustCompile(`^\w+$`)
var dottedPathReg = regexp.MustCompile(`^` + dottedPath + `$`)
var ordReg = regexp.MustCompile(`^(` + dottedPath + `)\s+(?i)(asc|desc)$`)

func appendStr(buf *[]byte, str string) {
	*buf = append(*buf, str...)
}

func appendEnclosed(buf *[]byte, prefix, infix, suffix string) {
	*buf = append(*buf, prefix...)
	*buf = append(*buf, infix...)
	*buf = append(*buf, suffix...)
}

func appendIdent(buf *[]byte, ident string) {
	// Allow-lists are validated, so this is only a sanity check.
	if strings.Contains(ident, `"`) {
		panic(errors.Errorf(`[filterable] unexpected %q in SQL identifier %q`, `"`, ident))
	}
	appendEnclosed(buf, `"`, ident, `"`)
}

func appendQualified(buf *[]byte, table, col string) {
	appendIdent(buf, table)
	appendStr(buf, `.`)
	appendIdent(buf, col)
}

func appendSqlPath(buf *[]byte, path []string) {
	for i, str := range path {
		if i == 0 {
			if len(path) > 1 {
				appendStr(buf, `(`)
				appendIdent(buf, str)
				appendStr(buf, `)`)
			} else {
				appendIdent(buf, str)
			}
		} else {
			appendStr(buf, `.`)
			appendIdent(buf, str)
		}
	}
}

func appendedBy(fun func(*[]byte)) []byte {
	var buf []byte
	fun(&buf)
	return buf
}

/*
Allocation-free conversion. Reinterprets a byte slice as a string. Borrowed from
the standard library. Reasonably safe. Should not be used when the underlying
byte array is volatile.
*/
func bytesToMutableString(bytes []byte) string {
	return *(*string)(unsafe.Pointer(&bytes))
}

// Duplicated from `sqlb`.
func appendSpaceIfNeeded(buf *[]byte) {
	if buf != nil && len(*buf) > 0 && !endsWithWhitspace(*buf) {
		*buf = append(*buf, ` `...)
	}
}

func endsWithWhitspace(chunk []byte) bool {
	char, _ := utf8.DecodeLastRune(chunk)
	return isWhitespaceChar(char)
}

func isWhitespaceChar(char rune) bool {
	switch char {
	case ' ', '\n', '\r', '\t', '\v':
		return true
	default:
		return false
	}
}

var timeType = reflect.TypeOf(time.Time{})

/*
True for values that can be bound as a single SQL argument: nil, strings,
booleans, numbers, and times. Pointers are dereferenced.
*/
func isScalar(val interface{}) bool {
	if val == nil {
		return true
	}

	rval := reflect.ValueOf(val)
	for rval.Kind() == reflect.Ptr {
		if rval.IsNil() {
			return true
		}
		rval = rval.Elem()
	}

	if rval.Type() == timeType {
		return true
	}

	switch rval.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

/*
Converts any slice or array into `[]interface{}`. The second result is false
for non-sequences. Byte slices are not sequences.
*/
func toSlice(val interface{}) ([]interface{}, bool) {
	switch val := val.(type) {
	case []interface{}:
		return val, true
	case []string:
		out := make([]interface{}, len(val))
		for i, elem := range val {
			out[i] = elem
		}
		return out, true
	case []byte, nil:
		return nil, false
	}

	rval := reflect.ValueOf(val)
	if rval.Kind() != reflect.Slice && rval.Kind() != reflect.Array {
		return nil, false
	}

	out := make([]interface{}, rval.Len())
	for i := range out {
		out[i] = rval.Index(i).Interface()
	}
	return out, true
}

func isNil(val interface{}) bool {
	if val == nil {
		return true
	}
	rval := reflect.ValueOf(val)
	switch rval.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return rval.IsNil()
	}
	return false
}
