package filterable

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

const (
	suffixFrom = `_from`
	suffixTo   = `_to`
)

/*
Resolves the attributes via `.FilterInput` and applies `.Filter`. Passing nil
attributes reads them from the source under the configured filter key.
*/
func (self Resource) FilterFrom(scope Scope, src Source, attrs Attrs) Scope {
	return self.Filter(scope, self.FilterInput(src, attrs))
}

/*
Adds one "and" group with a predicate per allow-listed attribute that has
eligible input. Relation keys such as "author.country" are matched through
`Scope.WhereHas`. Absent, nil or malformed values add nothing. Unparsable dates
are logged and skipped. Other attributes are processed regardless.

Panics on an invalid kind, which indicates misconfigured rules rather than bad
input; use `Rules.Validate` to catch this earlier.
*/
func (self Resource) Filter(scope Scope, attrs Attrs) Scope {
	if len(attrs) == 0 || len(self.Filterable) == 0 {
		return scope
	}

	scope.Group(JoinAnd, func(scope Scope) {
		for _, rule := range self.Filterable {
			self.filterRule(scope, rule, attrs)
		}
	})
	return scope
}

func (self Resource) filterRule(scope Scope, rule Rule, attrs Attrs) {
	key := rule.Key

	switch rule.Kind {
	case Equal:
		val, ok := attrs.scalar(key)
		if ok {
			where(scope, key, func(scope Scope, col string) {
				scope.Where(col, OpEqual, val)
			})
		}

	case Like:
		val, ok := attrs.scalar(key)
		if !ok {
			return
		}
		str, err := cast.ToStringE(val)
		if err != nil {
			return
		}
		where(scope, key, func(scope Scope, col string) {
			scope.Where(col, OpLike, `%`+str+`%`)
		})

	case In:
		vals, ok := self.set(attrs[key])
		if ok {
			where(scope, key, func(scope Scope, col string) {
				scope.WhereIn(col, vals)
			})
		}

	case Between:
		from, okFrom := attrs.scalar(key + suffixFrom)
		to, okTo := attrs.scalar(key + suffixTo)
		whereRange(scope, key, from, okFrom, to, okTo)

	case EqualDate:
		val, ok := attrs.present(key)
		if !ok {
			return
		}
		day, err := parseDay(val, self.Config.location())
		if err != nil {
			self.logDate(err, key, ``, val)
			return
		}
		where(scope, key, func(scope Scope, col string) {
			scope.WhereDate(col, day.Format(dateLayout))
		})

	case BetweenDate:
		from, okFrom := self.bound(attrs, key, suffixFrom)
		to, okTo := self.bound(attrs, key, suffixTo)
		whereRange(scope, key, from, okFrom, endOfDay(to), okTo)

	case Custom:
		val, ok := attrs[key]
		if ok && self.Custom != nil {
			self.Custom(scope, key, val)
		}

	default:
		panic(errors.Errorf(`[filterable] invalid filter kind %v for key %q`, byte(rule.Kind), key))
	}
}

/*
Closed range when both bounds are present, otherwise a one-sided comparison.
*/
func whereRange(scope Scope, key string, from interface{}, okFrom bool, to interface{}, okTo bool) {
	switch {
	case okFrom && okTo:
		where(scope, key, func(scope Scope, col string) {
			scope.WhereBetween(col, from, to)
		})
	case okFrom:
		where(scope, key, func(scope Scope, col string) {
			scope.Where(col, OpGte, from)
		})
	case okTo:
		where(scope, key, func(scope Scope, col string) {
			scope.Where(col, OpLte, to)
		})
	}
}

/*
Membership set for `In`. Sequences are used as-is. Scalars are converted to
strings and split on the configured separator. The set must be non-empty and
consist of scalars.
*/
func (self Resource) set(val interface{}) ([]interface{}, bool) {
	if isNil(val) {
		return nil, false
	}

	vals, ok := toSlice(val)
	if !ok {
		if !isScalar(val) {
			return nil, false
		}
		str, err := cast.ToStringE(val)
		if err != nil {
			return nil, false
		}
		for _, elem := range strings.Split(str, self.Config.separator()) {
			vals = append(vals, elem)
		}
	}

	if len(vals) == 0 {
		return nil, false
	}
	for _, elem := range vals {
		if !isScalar(elem) {
			return nil, false
		}
	}
	return vals, true
}

// One date bound of `BetweenDate`. Parse failures are logged independently.
func (self Resource) bound(attrs Attrs, key, suffix string) (time.Time, bool) {
	val, ok := attrs.present(key + suffix)
	if !ok {
		return time.Time{}, false
	}

	day, err := parseDay(val, self.Config.location())
	if err != nil {
		self.logDate(err, key, strings.TrimPrefix(suffix, `_`), val)
		return time.Time{}, false
	}
	return day, true
}

func (self Resource) logDate(err error, key, bound string, val interface{}) {
	entry := self.logger().WithError(err).WithField(`key`, key).WithField(`value`, val)
	if bound != `` {
		entry = entry.WithField(`bound`, bound)
	}
	entry.Error(`[filterable] skipping date filter`)
}

// Value under the key if present and not nil.
func (self Attrs) present(key string) (interface{}, bool) {
	val, ok := self[key]
	if !ok || isNil(val) {
		return nil, false
	}
	return val, true
}

// Value under the key if present, not nil, and a scalar.
func (self Attrs) scalar(key string) (interface{}, bool) {
	val, ok := self.present(key)
	if !ok || !isScalar(val) {
		return nil, false
	}
	return val, true
}
