package filterable

/*
Query object that translators attach predicates to. Every method appends one
predicate, joined with the previous ones according to the enclosing group.
`Cond` is the implementation backed by `sqlb`; other query builders can be
adapted by implementing this interface.
*/
type Scope interface {
	// Compares a column with a value using one of the `SqlOps`.
	Where(col string, op string, val interface{})

	// Column is a member of the given set. The set is never empty.
	WhereIn(col string, vals []interface{})

	// Column is in the closed range [from, to].
	WhereBetween(col string, from, to interface{})

	// Date component of the column equals the date formatted as "2006-01-02".
	WhereDate(col string, date string)

	/*
		The relation has at least one related record matching the predicates
		added by `fun`. Inside `fun`, columns refer to the related record.
	*/
	WhereHas(relation string, fun func(Scope))

	/*
		Predicates added by `fun` are joined with `join` and wrapped in one
		group. An empty group adds nothing.
	*/
	Group(join Join, fun func(Scope))
}

// How predicates within one group are combined.
type Join byte

const (
	JoinAnd Join = iota
	JoinOr
)

func (self Join) String() string {
	if self == JoinOr {
		return `or`
	}
	return `and`
}

// Comparison operators accepted by `Scope.Where`.
const (
	OpEqual = `=`
	OpLike  = `like`
	OpGte   = `>=`
	OpLte   = `<=`
)

/*
Whitelist of comparison operators `Cond` is willing to render. Anything else
is a programming error.
*/
var SqlOps = map[string]struct{}{
	OpEqual: {},
	OpLike:  {},
	OpGte:   {},
	OpLte:   {},
	`<>`:    {},
	`<`:     {},
	`>`:     {},
	`ilike`: {},
}
