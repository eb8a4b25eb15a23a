package integration

import (
	"net/url"
	"reflect"
	"testing"

	"github.com/mitranim/filterable"
	"github.com/mitranim/sqlb"
)

var posts = filterable.Resource{
	Filterable: filterable.RulesFrom(
		`status`, filterable.In,
		`title`, filterable.Like,
		`views`, filterable.Between,
		`published_on`, filterable.EqualDate,
		`created_at`, filterable.BetweenDate,
		`author.country`, filterable.Equal,
		`author.city.name`, filterable.In,
		`parent.status`, filterable.Equal,
		`parent.parent.status`, filterable.Equal,
	),
	Searchable: []string{`title`, `body`, `author.name`},
	Sortable:   []string{`created_at`, `views`},
}

var relations = map[string]filterable.Relation{
	`author`: {
		Table: `authors`,
		Relations: map[string]filterable.Relation{
			`city`: {Table: `cities`},
		},
	},
	`parent`: {
		Table:    `posts`,
		LocalKey: `parent_id`,
		Relations: map[string]filterable.Relation{
			`parent`: {Table: `posts`, LocalKey: `parent_id`},
		},
	},
}

type testCase struct {
	name  string
	query string
	ids   []int

	// Passes strings for non-text columns, which relies on untyped parameters.
	untyped bool
}

var testCases = []testCase{
	{name: `no input`, query: ``, ids: []int{1, 2, 3, 4}},
	{name: `in`, query: `filter[status]=draft|published`, ids: []int{1, 2, 3}},
	{name: `in brackets`, query: `filter[status][]=archived&filter[status][]=draft`, ids: []int{1, 4}},
	{name: `like`, query: `filter[title]=Go`, ids: []int{1, 2}},
	{name: `between`, query: `filter[views_from]=10&filter[views_to]=100`, ids: []int{1, 3}, untyped: true},
	{name: `between from`, query: `filter[views_from]=40`, ids: []int{2, 3}, untyped: true},
	{name: `equal date`, query: `filter[published_on]=2024-01-20`, ids: []int{2}, untyped: true},
	{name: `between date`, query: `filter[created_at_from]=2024-01-05&filter[created_at_to]=2024-01-20`, ids: []int{1, 2}},
	{name: `between date to`, query: `filter[created_at_to]=2024-01-31`, ids: []int{1, 2}},
	{name: `invalid date`, query: `filter[created_at_from]=someday&filter[status]=published`, ids: []int{2, 3}},
	{name: `relation`, query: `filter[author.country]=France`, ids: []int{1, 3, 4}},
	{name: `nested relation`, query: `filter[author.city.name]=Paris|Lyon`, ids: []int{1, 3, 4}},
	{name: `self relation`, query: `filter[parent.status]=draft`, ids: []int{2, 3}},
	{name: `self relation nested`, query: `filter[parent.parent.status]=draft`, ids: []int{4}},
	{name: `search`, query: `q=go`, ids: []int{4}},
	{name: `search relation`, query: `q=Alice`, ids: []int{1, 4}},
	{name: `filter and search`, query: `filter[status]=published&q=Go`, ids: []int{2}},
	{name: `ignored keys`, query: `filter[password]=secret&filter[id]=1`, ids: []int{1, 2, 3, 4}},
	{name: `sort`, query: `filter[status]=draft|published&sort=-views`, ids: []int{2, 3, 1}},
}

/*
Selects post ids matching the query string. Without an explicit ordering, rows
are ordered by id.
*/
func selectIDs(t *testing.T, cond filterable.Cond, query string) sqlb.Query {
	t.Helper()

	vals, err := url.ParseQuery(query)
	if err != nil {
		t.Fatal(err)
	}
	input := filterable.ParseQuery(vals)

	res := posts
	res.Logger = nullLogger()

	cond.Table = `posts`
	cond.Relations = relations
	res.FilterFrom(&cond, input, nil)
	res.SearchFrom(&cond, input, nil)

	ords := res.Sort(input, nil)
	ords.Or(filterable.OrdAsc(`id`))

	var out sqlb.Query
	out.Append(`select "posts"."id" from "posts" where $1 $2`, cond, ords)
	return out
}

func runCases(t *testing.T, typedOnly bool, cond filterable.Cond, fetch func(*testing.T, sqlb.Query) []int) {
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if typedOnly && tc.untyped {
				t.Skip("driver requires typed parameters")
			}

			query := selectIDs(t, cond, tc.query)
			ids := fetch(t, query)
			if !reflect.DeepEqual(tc.ids, ids) {
				t.Fatalf("%s\nexpected: %v\nactual:   %v", query.Text, tc.ids, ids)
			}
		})
	}
}
