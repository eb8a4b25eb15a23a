package filterable

/*
Resolves the term via `.SearchInput` and applies `.Search`. Without an explicit
term or a usable source value, adds nothing at all.
*/
func (self Resource) SearchFrom(scope Scope, src Source, term *string) Scope {
	str, ok := self.SearchInput(src, term)
	if !ok {
		return scope
	}
	return self.Search(scope, str)
}

/*
Adds one "or" group with a "like %term%" predicate per searchable key, so one
matching field is enough for a row to qualify. Relation keys such as
"author.name" are matched through `Scope.WhereHas`.
*/
func (self Resource) Search(scope Scope, term string) Scope {
	if len(self.Searchable) == 0 {
		return scope
	}

	pattern := `%` + term + `%`

	scope.Group(JoinOr, func(scope Scope) {
		for _, key := range self.Searchable {
			where(scope, key, func(scope Scope, col string) {
				scope.Where(col, OpLike, pattern)
			})
		}
	})
	return scope
}
