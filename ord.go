package filterable

import (
	"strings"

	"github.com/mitranim/sqlb"
	"github.com/spf13/cast"
)

/*
Short for "orderings". Structured representation of an SQL ordering such as:

	`order by "some_col" asc`

	`order by "some_col" asc, "other_col" desc`

When encoding to a string, identifiers are quoted for safety. An ordering with
empty `.Items` represents no ordering: "".

`Ords` implements `sqlb.IQuery` and can be directly used as a sub-query:

	var query sqlb.Query
	query.Append(`select * from posts where $1 $2`, cond, res.Sort(input, nil))
*/
type Ords struct {
	Items []Ord
}

var _ = sqlb.IQuery(Ords{})

// Shortcut for creating `Ords`.
func OrdsFrom(items ...Ord) Ords { return Ords{Items: items} }

/*
Reads orderings from `vals`, or from the source value under the configured sort
key when `vals` is empty. Accepts comma-separated strings or sequences of
strings. Each item is one of:

	created_at
	-created_at
	created_at desc

Items that aren't allow-listed in `.Sortable` or can't be parsed are ignored.
*/
func (self Resource) Sort(src Source, vals []string) Ords {
	if len(vals) == 0 && src != nil {
		vals = sortInput(src.Value(self.Config.sortKey()))
	}

	var out Ords
	for _, val := range vals {
		ord, ok := self.parseOrd(val)
		if ok {
			out.Append(ord)
		}
	}
	return out
}

func sortInput(val interface{}) []string {
	if str, ok := val.(string); ok {
		return strings.Split(str, `,`)
	}

	list, ok := toSlice(val)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(list))
	for _, elem := range list {
		str, err := cast.ToStringE(elem)
		if err == nil {
			out = append(out, str)
		}
	}
	return out
}

func (self Resource) parseOrd(str string) (ord Ord, _ bool) {
	str = strings.TrimSpace(str)

	if match := ordReg.FindStringSubmatch(str); match != nil {
		str = match[1]
		ord.IsDesc = strings.EqualFold(match[2], `desc`)
	} else if strings.HasPrefix(str, `-`) {
		str = str[1:]
		ord.IsDesc = true
	}

	if !isSortable(self.Sortable, str) {
		return ord, false
	}

	ord.Path = []string{str}
	return ord, true
}

func isSortable(keys []string, key string) bool {
	for _, val := range keys {
		if val == key {
			return true
		}
	}
	return false
}

/*
Allows this to be used as a sub-query for `sqlb.Query`. When used as an argument
for `Query.Append()`, this will be automatically interpolated.
*/
func (self Ords) QueryAppend(out *sqlb.Query) { self.AppendBytes(&out.Text) }

/*
Generates an SQL string like:

	`order by "some_col" asc, "other_col" desc`

If the sequence is empty, returns "".
*/
func (self Ords) String() string {
	return bytesToMutableString(appendedBy(self.AppendBytes))
}

// Appends an SQL string to the buffer. See `.String()`.
func (self Ords) AppendBytes(buf *[]byte) {
	first := true

	for _, ord := range self.Items {
		if first {
			appendSpaceIfNeeded(buf)
			appendStr(buf, "order by ")
			first = false
		} else {
			appendStr(buf, ", ")
		}
		ord.AppendBytes(buf)
	}
}

// True if the item slice is empty.
func (self Ords) IsEmpty() bool { return len(self.Items) == 0 }

// Convenience method for appending orderings.
func (self *Ords) Append(items ...Ord) {
	self.Items = append(self.Items, items...)
}

// If empty, replaces items with the provided fallback. Otherwise does nothing.
func (self *Ords) Or(items ...Ord) {
	if self.IsEmpty() {
		self.Items = items
	}
}

/*
Shortcut:

	OrdAsc(`one`, `two`) ≡ Ord{Path: []string{`one`, `two`}, IsDesc: false}
*/
func OrdAsc(path ...string) Ord { return Ord{Path: path, IsDesc: false} }

/*
Shortcut:

	OrdDesc(`one`, `two`) ≡ Ord{Path: []string{`one`, `two`}, IsDesc: true}
*/
func OrdDesc(path ...string) Ord { return Ord{Path: path, IsDesc: true} }

/*
Short for "ordering". Describes an SQL ordering like:

	`"some_col" asc`

	`("composite_col")."field" desc`

Note on `IsDesc`: the default value `false` corresponds to "ascending", which is
the default in SQL.
*/
type Ord struct {
	Path   []string
	IsDesc bool
}

/*
Returns an SQL string like:

	"some_col" asc

	("some_col")."other_col" asc
*/
func (self Ord) String() string {
	return bytesToMutableString(appendedBy(self.AppendBytes))
}

// Appends an SQL string to the buffer. See `.String()`.
func (self Ord) AppendBytes(buf *[]byte) {
	appendSqlPath(buf, self.Path)
	appendStr(buf, " ")
	if self.IsDesc {
		appendStr(buf, "desc")
	} else {
		appendStr(buf, "asc")
	}
}
