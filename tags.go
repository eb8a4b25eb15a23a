package filterable

import (
	"reflect"

	"github.com/mitranim/refut"
	"github.com/pkg/errors"
)

/*
Builds allow-lists from struct tags. The input is used only as a type carrier.
Keys are column names from `db` tags. Fields may be in embedded structs, but
not in non-embedded nested structs.

	type Post struct {
		Title     string    `db:"title"      filter:"like" search:""`
		Status    string    `db:"status"     filter:"in"`
		CreatedAt time.Time `db:"created_at" filter:"between_date" sort:""`
	}

	res, err := filterable.ResourceFor(Post{})

Fields without a `db` column are skipped. An unknown kind in a `filter` tag is
an error.
*/
func ResourceFor(typ interface{}) (Resource, error) {
	var out Resource

	rtype := typeElem(reflect.TypeOf(typ))
	if rtype == nil || rtype.Kind() != reflect.Struct {
		return out, errors.Errorf(`[filterable] expected a struct type, got %v`, rtype)
	}

	err := refut.TraverseStructRtype(rtype, func(sfield reflect.StructField, _ []int) error {
		col := refut.TagIdent(sfield.Tag.Get(`db`))
		if col == `` {
			return nil
		}

		if tag, ok := sfield.Tag.Lookup(`filter`); ok {
			kind, err := ParseKind(refut.TagIdent(tag))
			if err != nil {
				return errors.WithMessagef(err, `field %q of %v`, sfield.Name, rtype)
			}
			out.Filterable = append(out.Filterable, Rule{col, kind})
		}

		if _, ok := sfield.Tag.Lookup(`search`); ok {
			out.Searchable = append(out.Searchable, col)
		}

		if _, ok := sfield.Tag.Lookup(`sort`); ok {
			out.Sortable = append(out.Sortable, col)
		}
		return nil
	})
	if err != nil {
		return out, err
	}

	return out, out.Validate()
}

// Like `ResourceFor`, but panics on error. Intended for package-level variables.
func MustResourceFor(typ interface{}) Resource {
	out, err := ResourceFor(typ)
	if err != nil {
		panic(err)
	}
	return out
}

func typeElem(typ reflect.Type) reflect.Type {
	for typ != nil && typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	return typ
}
