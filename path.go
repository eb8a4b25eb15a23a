package filterable

import "strings"

/*
Attribute key split into an optional relation and a column. For "status" the
relation is empty. For "author.country" the relation is "author" and the column
is "country". Only the last dot is a split point: "post.author.country" has
the relation "post.author", which is passed through as-is; see `Cond.WhereHas`.
*/
type Path struct {
	Relation string
	Column   string
}

func ParsePath(key string) Path {
	index := strings.LastIndexByte(key, '.')
	if index < 0 {
		return Path{Column: key}
	}
	return Path{Relation: key[:index], Column: key[index+1:]}
}

func (self Path) IsRelation() bool { return self.Relation != `` }

func (self Path) String() string {
	if self.IsRelation() {
		return self.Relation + `.` + self.Column
	}
	return self.Column
}

/*
Routes a column-level predicate: directly for plain columns, or inside an
existential sub-predicate scoped to the relation.
*/
func where(scope Scope, key string, fun func(Scope, string)) {
	path := ParsePath(key)
	if !path.IsRelation() {
		fun(scope, path.Column)
		return
	}

	scope.WhereHas(path.Relation, func(scope Scope) {
		fun(scope, path.Column)
	})
}
