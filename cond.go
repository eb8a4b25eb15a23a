package filterable

import (
	"database/sql"
	"database/sql/driver"
	"strconv"
	"strings"

	"github.com/mitranim/sqlb"
	"github.com/pkg/errors"
)

/*
Converts a slice into a single driver-compatible array argument. An example for
github.com/lib/pq is `pq.Array`. For github.com/jackc/pgx this isn't needed.
*/
type ArrayDriver func(interface{}) interface {
	driver.Valuer
	sql.Scanner
}

/*
Describes how `Cond.WhereHas` correlates a related table with its parent:

	exists (select 1 from "<Table>" as "<alias>" where "<alias>"."<ForeignKey>" = "<parent>"."<LocalKey>" and (...))

The alias is the parent's qualifier and the relation name joined with "__",
such as "posts__author", so a relation may refer to its parent's own table.

Defaults follow the belongs-to convention for a relation named "author": table
"author", foreign key "id", local key "author_id". Nested `Relations` are
consulted for dotted relation identifiers such as "author.country".
*/
type Relation struct {
	Table      string              `yaml:"table"`
	ForeignKey string              `yaml:"foreign_key"`
	LocalKey   string              `yaml:"local_key"`
	Relations  map[string]Relation `yaml:"relations"`
}

/*
Reports a relation name or key that can't be used as an identifier, here or in
nested relations.
*/
func (self Relation) validate(name string) error {
	for _, ident := range []string{name, self.Table, self.ForeignKey, self.LocalKey} {
		if ident != `` && !identReg.MatchString(ident) {
			return errors.Errorf(`[filterable] relation %q: expected a valid identifier, got %q`, name, ident)
		}
	}

	for key, rel := range self.Relations {
		err := rel.validate(key)
		if err != nil {
			return errors.WithMessagef(err, `relation %q`, name)
		}
	}
	return nil
}

func (self Relation) table(name string) string {
	if self.Table != `` {
		return self.Table
	}
	return name
}

func (self Relation) foreignKey() string {
	if self.ForeignKey != `` {
		return self.ForeignKey
	}
	return `id`
}

func (self Relation) localKey(name string) string {
	if self.LocalKey != `` {
		return self.LocalKey
	}
	return name + `_id`
}

/*
SQL condition builder implementing `Scope`. Embeds `sqlb.Query` and implements
`sqlb.IQuery`, so it can be used as a sub-query for other `sqlb` queries:

	cond := Cond{Table: `posts`}
	res.Filter(&cond, attrs)

	var query sqlb.Query
	query.Append(`select * from posts where $1`, cond)

Arguments are appended to `.Args` and referenced by ordinal parameters `$N`.
Identifiers are quoted. Columns are qualified with `.Alias`, or with `.Table`
when the alias is empty. Relations require one of them. Predicates are joined
with `.Join`, which defaults to "and".
*/
type Cond struct {
	sqlb.Query
	Table       string
	Alias       string
	Relations   map[string]Relation
	Join        Join
	ArrayDriver ArrayDriver
}

var (
	_ = sqlb.IQuery(Cond{})
	_ = Scope((*Cond)(nil))
)

/*
Implement `sqlb.IQuery`. An empty condition appends `true`, so the caller can
always expect some expression.
*/
func (self Cond) QueryAppend(out *sqlb.Query) {
	if len(self.Text) == 0 {
		out.Append(`true`)
	} else {
		self.Query.QueryAppend(out)
	}
}

// True if no predicates have been added.
func (self Cond) IsEmpty() bool { return len(self.Text) == 0 }

// Implement `Scope`.
func (self *Cond) Where(col string, op string, val interface{}) {
	if _, ok := SqlOps[op]; !ok {
		panic(errors.Errorf(`[filterable] unsupported operator %q`, op))
	}

	self.join()
	self.appendCol(col)
	appendEnclosed(&self.Text, ` `, op, ` `)
	self.appendArg(val)
}

// Implement `Scope`.
func (self *Cond) WhereIn(col string, vals []interface{}) {
	self.join()

	if len(vals) == 0 {
		appendStr(&self.Text, `false`)
		return
	}

	self.appendCol(col)

	if self.ArrayDriver != nil {
		appendStr(&self.Text, ` = any(`)
		self.appendArg(self.ArrayDriver(vals))
		appendStr(&self.Text, `)`)
		return
	}

	appendStr(&self.Text, ` in (`)
	for i, val := range vals {
		if i > 0 {
			appendStr(&self.Text, `, `)
		}
		self.appendArg(val)
	}
	appendStr(&self.Text, `)`)
}

// Implement `Scope`.
func (self *Cond) WhereBetween(col string, from, to interface{}) {
	self.join()
	self.appendCol(col)
	appendStr(&self.Text, ` between `)
	self.appendArg(from)
	appendStr(&self.Text, ` and `)
	self.appendArg(to)
}

// Implement `Scope`.
func (self *Cond) WhereDate(col string, date string) {
	self.join()
	appendStr(&self.Text, `cast(`)
	self.appendCol(col)
	appendStr(&self.Text, ` as date) = `)
	self.appendArg(date)
}

/*
Implement `Scope`. The relation must be registered in `.Relations`; an unknown
relation is a programming error and panics. Dotted identifiers such as
"author.country" produce nested `exists` sub-queries.
*/
func (self *Cond) WhereHas(relation string, fun func(Scope)) {
	self.whereHas(strings.Split(relation, `.`), fun)
}

func (self *Cond) whereHas(names []string, fun func(Scope)) {
	name := names[0]
	rel, ok := self.Relations[name]
	if !ok {
		panic(errors.Errorf(`[filterable] unknown relation %q`, name))
	}

	parent := self.qualifier()
	if parent == `` {
		panic(errors.Errorf(`[filterable] relation %q requires a parent table or alias`, name))
	}

	sub := self.sub(JoinAnd)
	sub.Table = rel.table(name)
	sub.Alias = parent + `__` + name
	sub.Relations = rel.Relations

	if len(names) > 1 {
		sub.whereHas(names[1:], fun)
	} else {
		sub.Group(JoinAnd, fun)
	}
	self.Args = sub.Args

	self.join()
	appendStr(&self.Text, `exists (select 1 from `)
	appendIdent(&self.Text, sub.Table)
	appendStr(&self.Text, ` as `)
	appendIdent(&self.Text, sub.Alias)
	appendStr(&self.Text, ` where `)
	sub.appendColTo(&self.Text, rel.foreignKey())
	appendStr(&self.Text, ` = `)
	self.appendCol(rel.localKey(name))
	if len(sub.Text) > 0 {
		appendStr(&self.Text, ` and `)
		self.Text = append(self.Text, sub.Text...)
	}
	appendStr(&self.Text, `)`)
}

// Implement `Scope`.
func (self *Cond) Group(join Join, fun func(Scope)) {
	sub := self.sub(join)
	fun(&sub)
	if len(sub.Text) == 0 {
		return
	}
	self.Args = sub.Args

	self.join()
	appendStr(&self.Text, `(`)
	self.Text = append(self.Text, sub.Text...)
	appendStr(&self.Text, `)`)
}

/*
Child condition sharing our arguments, so that its ordinal parameters continue
our numbering. The caller must adopt `sub.Args` when adopting its text.
*/
func (self *Cond) sub(join Join) Cond {
	return Cond{
		Query:       sqlb.Query{Args: self.Args},
		Table:       self.Table,
		Alias:       self.Alias,
		Relations:   self.Relations,
		Join:        join,
		ArrayDriver: self.ArrayDriver,
	}
}

func (self *Cond) join() {
	if len(self.Text) > 0 {
		appendEnclosed(&self.Text, ` `, self.Join.String(), ` `)
	}
}

func (self *Cond) appendArg(val interface{}) {
	self.Args = append(self.Args, val)
	appendStr(&self.Text, `$`+strconv.Itoa(len(self.Args)))
}

func (self *Cond) appendCol(col string) { self.appendColTo(&self.Text, col) }

func (self *Cond) appendColTo(buf *[]byte, col string) {
	if qual := self.qualifier(); qual != `` {
		appendQualified(buf, qual, col)
	} else {
		appendIdent(buf, col)
	}
}

func (self *Cond) qualifier() string {
	if self.Alias != `` {
		return self.Alias
	}
	return self.Table
}
