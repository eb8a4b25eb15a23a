package filterable

import (
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultFilterKey = `filter`
	DefaultSearchKey = `q`
	DefaultSortKey   = `sort`
	DefaultSeparator = `|`
)

// Setting names consulted by `ConfigFrom`.
const (
	SettingFilterKey = `filterable.input_keys.filter`
	SettingSearchKey = `filterable.input_keys.search`
	SettingSortKey   = `filterable.input_keys.sort`
	SettingSeparator = `filterable.in_separator`
	SettingTimezone  = `filterable.timezone`
)

/*
Source of string settings by dotted name. Satisfied by `*viper.Viper`. Missing
settings must be reported as "".
*/
type Settings interface {
	GetString(key string) string
}

/*
Translator configuration. Zero fields fall back to the defaults: input keys
"filter", "q" and "sort", the "|" separator for `In`, and UTC for dates.
*/
type Config struct {
	FilterKey string
	SearchKey string
	SortKey   string
	Separator string
	Location  *time.Location
}

/*
Reads the configuration from settings such as "filterable.input_keys.filter".
Fails only on an unknown "filterable.timezone".
*/
func ConfigFrom(src Settings) (Config, error) {
	var conf Config
	if src == nil {
		return conf, nil
	}

	conf.FilterKey = setting(src, SettingFilterKey, DefaultFilterKey)
	conf.SearchKey = setting(src, SettingSearchKey, DefaultSearchKey)
	conf.SortKey = setting(src, SettingSortKey, DefaultSortKey)
	conf.Separator = setting(src, SettingSeparator, DefaultSeparator)

	zone := setting(src, SettingTimezone, ``)
	if zone != `` {
		loc, err := time.LoadLocation(zone)
		if err != nil {
			return conf, errors.Wrapf(err, `[filterable] invalid %v %q`, SettingTimezone, zone)
		}
		conf.Location = loc
	}
	return conf, nil
}

func setting(src Settings, key, def string) string {
	val := src.GetString(key)
	if val == `` {
		return def
	}
	return val
}

func (self Config) filterKey() string { return or(self.FilterKey, DefaultFilterKey) }
func (self Config) searchKey() string { return or(self.SearchKey, DefaultSearchKey) }
func (self Config) sortKey() string   { return or(self.SortKey, DefaultSortKey) }
func (self Config) separator() string { return or(self.Separator, DefaultSeparator) }

func (self Config) location() *time.Location {
	if self.Location != nil {
		return self.Location
	}
	return time.UTC
}

func or(val, def string) string {
	if val != `` {
		return val
	}
	return def
}
