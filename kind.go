package filterable

import (
	"fmt"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

/*
Operator kind of an allow-listed attribute. Kinds are fixed when the allow-list
is authored; input can never choose which operator runs against which field.
*/
type Kind byte

const (
	Equal Kind = iota + 1
	Like
	In
	Between
	EqualDate
	BetweenDate
	Custom
)

/*
Whitelist of operator kinds, by the names used in configuration and struct
tags.
*/
var Kinds = map[string]Kind{
	"equal":        Equal,
	"like":         Like,
	"in":           In,
	"between":      Between,
	"equal_date":   EqualDate,
	"between_date": BetweenDate,
	"custom":       Custom,
}

var kindNames = func() map[Kind]string {
	out := make(map[Kind]string, len(Kinds))
	for name, kind := range Kinds {
		out[kind] = name
	}
	return out
}()

// Parses a kind name such as "between_date".
func ParseKind(name string) (Kind, error) {
	kind, ok := Kinds[name]
	if !ok {
		return 0, errors.Errorf(`[filterable] unknown filter kind %q`, name)
	}
	return kind, nil
}

// True if the kind is one of the predefined constants.
func (self Kind) IsValid() bool {
	_, ok := kindNames[self]
	return ok
}

func (self Kind) String() string {
	name, ok := kindNames[self]
	if ok {
		return name
	}
	return fmt.Sprintf(`Kind(%d)`, byte(self))
}

func (self Kind) MarshalText() ([]byte, error) {
	if !self.IsValid() {
		return nil, errors.Errorf(`[filterable] can't encode invalid filter kind %v`, byte(self))
	}
	return []byte(self.String()), nil
}

func (self *Kind) UnmarshalText(input []byte) error {
	kind, err := ParseKind(string(input))
	if err != nil {
		return err
	}
	*self = kind
	return nil
}

// Allow-list entry: the attribute key and the only operator kind it accepts.
type Rule struct {
	Key  string
	Kind Kind
}

/*
Ordered allow-list of filterable attributes. Keys may be simple column names
such as "status" or relation paths such as "author.country"; see `ParsePath`.
*/
type Rules []Rule

// Shortcut for building `Rules` from alternating keys and kinds.
func RulesFrom(pairs ...interface{}) Rules {
	if len(pairs)%2 != 0 {
		panic(errors.Errorf(`[filterable] expected key-kind pairs, got %v values`, len(pairs)))
	}

	out := make(Rules, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic(errors.Errorf(`[filterable] expected string key at %v, got %T`, i, pairs[i]))
		}
		kind, ok := pairs[i+1].(Kind)
		if !ok {
			panic(errors.Errorf(`[filterable] expected Kind at %v, got %T`, i+1, pairs[i+1]))
		}
		out = append(out, Rule{key, kind})
	}
	return out
}

// Returns the kind configured for the key, if any.
func (self Rules) Get(key string) (Kind, bool) {
	for _, rule := range self {
		if rule.Key == key {
			return rule.Kind, true
		}
	}
	return 0, false
}

// Returns the keys in allow-list order.
func (self Rules) Keys() []string {
	out := make([]string, 0, len(self))
	for _, rule := range self {
		out = append(out, rule.Key)
	}
	return out
}

/*
Reports the first misconfiguration: an invalid kind, a key that isn't a dotted
identifier, or a duplicate key.
*/
func (self Rules) Validate() error {
	seen := make(map[string]struct{}, len(self))

	for _, rule := range self {
		if !dottedPathReg.MatchString(rule.Key) {
			return errors.Errorf(`[filterable] expected a valid dot-separated identifier, got %q`, rule.Key)
		}
		if !rule.Kind.IsValid() {
			return errors.Errorf(`[filterable] invalid filter kind %v for key %q`, byte(rule.Kind), rule.Key)
		}
		if _, ok := seen[rule.Key]; ok {
			return errors.Errorf(`[filterable] duplicate filter key %q`, rule.Key)
		}
		seen[rule.Key] = struct{}{}
	}
	return nil
}

/*
Decodes a YAML mapping like:

	status: equal
	author.country: in

preserving the order of keys.
*/
func (self *Rules) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errors.Errorf(`[filterable] line %v: expected a mapping of keys to filter kinds`, node.Line)
	}

	out := make(Rules, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, kindNode := node.Content[i], node.Content[i+1]

		var rule Rule
		err := keyNode.Decode(&rule.Key)
		if err != nil {
			return errors.Wrapf(err, `[filterable] line %v: failed to decode filter key`, keyNode.Line)
		}

		var name string
		err = kindNode.Decode(&name)
		if err != nil {
			return errors.Wrapf(err, `[filterable] line %v: failed to decode filter kind`, kindNode.Line)
		}

		rule.Kind, err = ParseKind(name)
		if err != nil {
			return errors.Wrapf(err, `line %v`, kindNode.Line)
		}
		out = append(out, rule)
	}

	*self = out
	return nil
}
