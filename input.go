package filterable

import (
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strings"
)

/*
Raw attribute bag. Values are scalars, sequences of scalars, or nil. Keys are
allow-listed attribute keys, or "<key>_from" and "<key>_to" for ranges.
*/
type Attrs map[string]interface{}

// Request-like input source, consulted when input isn't passed explicitly.
type Source interface {
	Value(key string) interface{}
}

/*
Decoded request input. Values are strings, `[]interface{}` for "key[]=..." and
`map[string]interface{}` for "key[sub]=...". Implements `Source`.
*/
type Input map[string]interface{}

var _ = Source(Input(nil))

// Implement `Source`.
func (self Input) Value(key string) interface{} { return self[key] }

/*
Decodes bracket syntax used by HTML forms and common HTTP frameworks:

	filter[status]=published             → {"filter": {"status": "published"}}
	filter[status][]=draft&filter[status][]=published
	                                     → {"filter": {"status": ["draft", "published"]}}
	q=term                               → {"q": "term"}

Empty strings become nil, so "filter[status]=" is treated like a null value.
When the same key repeats without "[]", the last value wins.
*/
func ParseQuery(vals url.Values) Input {
	out := Input{}

	keys := make([]string, 0, len(vals))
	for key := range vals {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		path := splitBrackets(key)
		if path == nil {
			continue
		}
		for _, val := range vals[key] {
			insertPath(out, path, val)
		}
	}
	return out
}

/*
Reads input from the request's parsed form, which includes the URL query.
If the body can't be parsed, only the URL query is used.
*/
func FromRequest(req *http.Request) Input {
	if req == nil {
		return nil
	}
	if err := req.ParseForm(); err != nil {
		if req.URL == nil {
			return Input{}
		}
		return ParseQuery(req.URL.Query())
	}
	return ParseQuery(req.Form)
}

// "filter[status][]" → ["filter", "status", ""]. Returns nil for malformed keys.
func splitBrackets(key string) []string {
	index := strings.IndexByte(key, '[')
	if index < 0 {
		if key == `` {
			return nil
		}
		return []string{key}
	}
	if index == 0 {
		return nil
	}

	path := []string{key[:index]}
	rest := key[index:]

	for len(rest) > 0 {
		if rest[0] != '[' {
			return nil
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil
		}
		path = append(path, rest[1:end])
		rest = rest[end+1:]
	}
	return path
}

func insertPath(node map[string]interface{}, path []string, val string) {
	head := path[0]

	if len(path) == 1 {
		node[head] = inputValue(val)
		return
	}

	if len(path) == 2 && path[1] == `` {
		list, _ := node[head].([]interface{})
		node[head] = append(list, inputValue(val))
		return
	}

	child, ok := node[head].(map[string]interface{})
	if !ok {
		child = map[string]interface{}{}
		node[head] = child
	}
	insertPath(child, path[1:], val)
}

func inputValue(val string) interface{} {
	if val == `` {
		return nil
	}
	return val
}

/*
Converts a mapping with string keys into `Attrs`. `url.Values` follow
`ParseQuery`: one value is a scalar, several are a sequence, and empty strings
are nil. Other maps, such as `map[string]string`, keep their values as-is.
*/
func toAttrs(val interface{}) (Attrs, bool) {
	switch val := val.(type) {
	case nil:
		return nil, false
	case Attrs:
		return val, true
	case Input:
		return Attrs(val), true
	case map[string]interface{}:
		return Attrs(val), true
	case url.Values:
		out := make(Attrs, len(val))
		for key, vals := range val {
			out[key] = valuesAttr(vals)
		}
		return out, true
	}

	rval := reflect.ValueOf(val)
	if rval.Kind() != reflect.Map || rval.Type().Key().Kind() != reflect.String {
		return nil, false
	}

	out := make(Attrs, rval.Len())
	iter := rval.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func valuesAttr(vals []string) interface{} {
	switch len(vals) {
	case 0:
		return nil
	case 1:
		return inputValue(vals[0])
	}

	out := make([]interface{}, len(vals))
	for i, val := range vals {
		out[i] = inputValue(val)
	}
	return out
}
