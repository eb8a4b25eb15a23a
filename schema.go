package filterable

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

/*
File-based description of a resource and how its relations are joined:

	posts:
	  table: posts
	  filterable:
	    status: in
	    created_at: between_date
	    author.country: equal
	  searchable: [title, author.name]
	  sortable: [created_at, title]
	  relations:
	    author:
	      table: authors
	      local_key: author_id

The order of `filterable` keys is preserved.
*/
type Schema struct {
	Table      string              `yaml:"table"`
	Filterable Rules               `yaml:"filterable"`
	Searchable []string            `yaml:"searchable"`
	Sortable   []string            `yaml:"sortable"`
	Relations  map[string]Relation `yaml:"relations"`
}

// Schemas by resource name.
type Schemas map[string]Schema

// Decodes and validates schemas from YAML.
func LoadSchemas(src io.Reader) (Schemas, error) {
	var out Schemas

	dec := yaml.NewDecoder(src)
	dec.KnownFields(true)
	err := dec.Decode(&out)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, `[filterable] failed to decode schemas`)
	}

	for name, schema := range out {
		err := schema.Validate()
		if err != nil {
			return nil, errors.WithMessagef(err, `schema %q`, name)
		}
	}
	return out, nil
}

/*
Validates the allow-lists, then checks that every relation key such as
"author.country" resolves through `.Relations`, level by level, and that a
table is set to correlate them with. `Custom` keys are exempt since their
handler decides what they mean.
*/
func (self Schema) Validate() error {
	if self.Table != `` && !identReg.MatchString(self.Table) {
		return errors.Errorf(`[filterable] expected a valid table name, got %q`, self.Table)
	}

	_, err := self.Resource(Config{})
	if err != nil {
		return err
	}

	for name, rel := range self.Relations {
		err := rel.validate(name)
		if err != nil {
			return err
		}
	}

	for _, rule := range self.Filterable {
		if rule.Kind != Custom {
			err := self.validatePath(rule.Key)
			if err != nil {
				return err
			}
		}
	}

	for _, key := range self.Searchable {
		err := self.validatePath(key)
		if err != nil {
			return err
		}
	}
	return nil
}

func (self Schema) validatePath(key string) error {
	path := ParsePath(key)
	if !path.IsRelation() {
		return nil
	}

	if self.Table == `` {
		return errors.Errorf(`[filterable] relation key %q requires the schema table`, key)
	}

	rels := self.Relations
	for _, name := range strings.Split(path.Relation, `.`) {
		rel, ok := rels[name]
		if !ok {
			return errors.Errorf(`[filterable] key %q refers to undeclared relation %q`, key, name)
		}
		rels = rel.Relations
	}
	return nil
}

// Validated resource with the given configuration.
func (self Schema) Resource(conf Config) (Resource, error) {
	return NewResource(Resource{
		Filterable: self.Filterable,
		Searchable: self.Searchable,
		Sortable:   self.Sortable,
		Config:     conf,
	})
}

// Empty condition for the schema's table and relations.
func (self Schema) Cond() Cond {
	return Cond{Table: self.Table, Relations: self.Relations}
}
