/*
Overview

Translates untrusted request parameters into allow-listed SQL predicates.
Exposes filtering and search on a resource without hand-writing predicate logic
per endpoint, while constraining which fields and operators are exposed.

Example request:

  /posts?filter[status]=draft|published&filter[created_at_from]=2024-01-01&filter[author.country]=France&q=golang

Example resource. Keys are columns or relation paths; kinds are fixed here and
never chosen by input.

  var posts = filterable.Resource{
    Filterable: filterable.RulesFrom(
      `status`, filterable.In,
      `created_at`, filterable.BetweenDate,
      `author.country`, filterable.Equal,
    ),
    Searchable: []string{`title`, `author.name`},
  }

Usage with the built-in `sqlb`-based condition:

  input := filterable.FromRequest(req)

  cond := filterable.Cond{
    Table:     `posts`,
    Relations: map[string]filterable.Relation{`author`: {Table: `authors`}},
  }
  posts.FilterFrom(&cond, input, nil)
  posts.SearchFrom(&cond, input, nil)

  var query sqlb.Query
  query.Append(`select * from posts where $1`, cond)

The result is roughly equivalent to the following (formatted for clarity):

  select * from posts where
    (
      "posts"."status" in ($1, $2)
      and "posts"."created_at" >= $3
      and exists (
        select 1 from "authors"
        where "authors"."id" = "posts"."author_id" and ("authors"."country" = $4)
      )
    )
    and (
      "posts"."title" like $5
      or exists (
        select 1 from "authors"
        where "authors"."id" = "posts"."author_id" and ("authors"."name" like $6)
      )
    )

Operator kinds

  equal          column = value
  like           column like %value%
  in             column in (values); a scalar "a|b|c" is split on the separator
  between        closed range from "<key>_from" and "<key>_to", or one side of it
  equal_date     date component of column = parsed date
  between_date   start of day of "<key>_from" through end of day of "<key>_to"
  custom         delegated to `Resource.Custom`

Absent, nil or malformed values produce no predicate. Unparsable dates are
logged via `Resource.Logger` and skipped. Nothing here returns errors for bad
input; only misconfigured allow-lists are errors.

Query builders

Translators write to the `Scope` interface. `Cond` implements it on top of
`sqlb.Query`. Other builders can be adapted by implementing `Scope`.

Configuration

Input key names and the `in` separator come from `Config`, which may be read
from any `Settings` such as a `*viper.Viper`:

  filterable.input_keys.filter   default "filter"
  filterable.input_keys.search   default "q"
  filterable.input_keys.sort     default "sort"
  filterable.in_separator        default "|"
  filterable.timezone            default "UTC"

Allow-lists can also be declared with struct tags (see `ResourceFor`) or in YAML
files (see `LoadSchemas`).

Orderings

`Resource.Sort` decodes "sort=-created_at,title" against `Resource.Sortable`
into `Ords`, a structured "order by" clause usable as an `sqlb` sub-query.
*/
package filterable
