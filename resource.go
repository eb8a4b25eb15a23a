package filterable

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

/*
Extension point for `Custom` rules. Receives the scope of the filter group, the
allow-listed key, and the raw value, which may be nil. It's responsible for its
own predicates.
*/
type CustomFunc func(scope Scope, key string, val interface{})

/*
Filter and search configuration of one queryable resource, such as a table of
posts:

	var posts = filterable.Resource{
		Filterable: filterable.RulesFrom(
			`status`, filterable.In,
			`title`, filterable.Like,
			`created_at`, filterable.BetweenDate,
			`author.country`, filterable.Equal,
		),
		Searchable: []string{`title`, `author.name`},
	}

Allow-lists decide which attributes are eligible for translation and with which
operator. They don't decide whether the caller may see the underlying data.

A `Resource` holds no per-call state and may be shared between goroutines.
*/
type Resource struct {
	Filterable Rules
	Searchable []string
	Sortable   []string
	Custom     CustomFunc
	Config     Config
	Logger     logrus.FieldLogger
}

// Validates the allow-lists and returns the resource.
func NewResource(res Resource) (Resource, error) {
	return res, res.Validate()
}

/*
Reports misconfigured allow-lists: invalid kinds, malformed or duplicate keys.
Relation keys are allowed in `.Searchable` but not in `.Sortable`.
*/
func (self Resource) Validate() error {
	err := self.Filterable.Validate()
	if err != nil {
		return err
	}

	for _, key := range self.Searchable {
		if !dottedPathReg.MatchString(key) {
			return errors.Errorf(`[filterable] expected a valid dot-separated searchable identifier, got %q`, key)
		}
	}

	for _, key := range self.Sortable {
		if ParsePath(key).IsRelation() || !dottedPathReg.MatchString(key) {
			return errors.Errorf(`[filterable] expected a valid sortable column name, got %q`, key)
		}
	}
	return nil
}

// Filter allow-list, never nil.
func (self Resource) FilterRules() Rules {
	if self.Filterable == nil {
		return Rules{}
	}
	return self.Filterable
}

// Search allow-list, never nil.
func (self Resource) SearchKeys() []string {
	if self.Searchable == nil {
		return []string{}
	}
	return self.Searchable
}

// Sort allow-list, never nil.
func (self Resource) SortKeys() []string {
	if self.Sortable == nil {
		return []string{}
	}
	return self.Sortable
}

// True if any attribute is filterable. Doesn't need request input.
func (self Resource) IsFilterable() bool { return len(self.Filterable) > 0 }

// True if any attribute is searchable. Doesn't need request input.
func (self Resource) IsSearchable() bool { return len(self.Searchable) > 0 }

// True if any column is sortable. Doesn't need request input.
func (self Resource) IsSortable() bool { return len(self.Sortable) > 0 }

/*
Explicit non-empty attributes take priority. Otherwise the source value under
the configured filter key is used, but only when it's a mapping with string
keys, such as `Input` or `url.Values`; see `toAttrs`. Anything else is treated
as absent.
*/
func (self Resource) FilterInput(src Source, attrs Attrs) Attrs {
	if len(attrs) > 0 {
		return attrs
	}
	if src == nil {
		return Attrs{}
	}

	out, ok := toAttrs(src.Value(self.Config.filterKey()))
	if !ok || out == nil {
		return Attrs{}
	}
	return out
}

/*
An explicit term takes priority, even when empty. Otherwise the source value
under the configured search key is used, but only when it's a non-empty
string.
*/
func (self Resource) SearchInput(src Source, term *string) (string, bool) {
	if term != nil {
		return *term, true
	}
	if src == nil {
		return ``, false
	}

	val, ok := src.Value(self.Config.searchKey()).(string)
	if !ok || val == `` {
		return ``, false
	}
	return val, true
}

func (self Resource) logger() logrus.FieldLogger {
	if self.Logger != nil {
		return self.Logger
	}
	return logrus.StandardLogger()
}
