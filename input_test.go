package filterable

import (
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestParseQuery(t *testing.T) {
	t.Run(`brackets`, func(t *testing.T) {
		vals, err := url.ParseQuery(`filter[status][]=draft&filter[status][]=published&filter[author.country]=France&filter[title]=&q=go&sort=-created_at`)
		if err != nil {
			t.Fatal(err)
		}

		eq(
			t,
			Input{
				`filter`: map[string]interface{}{
					`status`:         []interface{}{`draft`, `published`},
					`author.country`: `France`,
					`title`:          nil,
				},
				`q`:    `go`,
				`sort`: `-created_at`,
			},
			ParseQuery(vals),
		)
	})

	t.Run(`last_value_wins`, func(t *testing.T) {
		eq(t, Input{`q`: `b`}, ParseQuery(url.Values{`q`: {`a`, `b`}}))
	})

	t.Run(`malformed_keys`, func(t *testing.T) {
		eq(t, Input{}, ParseQuery(url.Values{
			`filter[status`: {`a`},
			`[status]`:      {`a`},
			`filter]x[`:     {`a`},
			``:              {`a`},
		}))
	})

	t.Run(`nested`, func(t *testing.T) {
		eq(
			t,
			Input{`filter`: map[string]interface{}{`meta`: map[string]interface{}{`key`: `val`}}},
			ParseQuery(url.Values{`filter[meta][key]`: {`val`}}),
		)
	})
}

func TestFromRequest(t *testing.T) {
	req := httptest.NewRequest(`GET`, `/posts?filter%5Bstatus%5D=draft%7Cpublished&q=go`, nil)
	input := FromRequest(req)

	eq(t, `go`, input.Value(`q`))
	eq(t, map[string]interface{}{`status`: `draft|published`}, input.Value(`filter`))

	res := Resource{Filterable: RulesFrom(`status`, In), Searchable: []string{`title`}}

	var cond Cond
	res.FilterFrom(&cond, input, nil)
	res.SearchFrom(&cond, input, nil)

	eqCond(t, cond, `("status" in ($1, $2)) and ("title" like $3)`, `draft`, `published`, `%go%`)
}

type sourceFunc func(string) interface{}

func (self sourceFunc) Value(key string) interface{} { return self(key) }

func sourceOf(val interface{}) Source {
	return sourceFunc(func(key string) interface{} {
		if key == `filter` {
			return val
		}
		return nil
	})
}

type stringAttrs map[string]string

func TestFilterInputMappings(t *testing.T) {
	res := Resource{Filterable: RulesFrom(`status`, In, `title`, Like)}

	t.Run(`input`, func(t *testing.T) {
		eq(t, Attrs{`status`: `draft`}, res.FilterInput(sourceOf(Input{`status`: `draft`}), nil))
	})

	t.Run(`url_values`, func(t *testing.T) {
		attrs := res.FilterInput(sourceOf(url.Values{
			`status`: {`draft`, `published`},
			`title`:  {`go`},
			`body`:   {``},
		}), nil)

		eq(t, Attrs{`status`: []interface{}{`draft`, `published`}, `title`: `go`, `body`: nil}, attrs)

		var cond Cond
		res.Filter(&cond, attrs)
		eqCond(t, cond, `("status" in ($1, $2) and "title" like $3)`, `draft`, `published`, `%go%`)
	})

	t.Run(`named_map`, func(t *testing.T) {
		eq(t, Attrs{`title`: `go`}, res.FilterInput(sourceOf(stringAttrs{`title`: `go`}), nil))
	})

	t.Run(`not_a_mapping`, func(t *testing.T) {
		eq(t, Attrs{}, res.FilterInput(sourceOf(map[int]string{1: `go`}), nil))
		eq(t, Attrs{}, res.FilterInput(sourceOf([]string{`go`}), nil))
		eq(t, Attrs{}, res.FilterInput(sourceOf(Attrs(nil)), nil))
	})
}
