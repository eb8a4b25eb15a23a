package main

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mitranim/filterable"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "filterable",
		Short:         "Inspect how request parameters translate into SQL predicates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newExplainCommand())
	return cmd
}

type explainOptions struct {
	schemaFile string
	configFile string
	resource   string
	debug      bool
}

func newExplainCommand() *cobra.Command {
	var opts explainOptions

	cmd := &cobra.Command{
		Use:   "explain [OPTIONS] QUERY",
		Short: "Print the condition, ordering and arguments for a query string",
		Example: `  filterable explain --schema schema.yaml --resource posts \
    'filter[status]=draft|published&filter[author.country]=France&q=golang&sort=-created_at'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.debug {
				logrus.SetLevel(logrus.DebugLevel)
			}
			return runExplain(cmd.OutOrStdout(), opts, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.schemaFile, "schema", "s", "filterable.yaml", "YAML file with resource schemas")
	flags.StringVarP(&opts.configFile, "config", "c", "", "Configuration file with filterable.* settings")
	flags.StringVarP(&opts.resource, "resource", "r", "", "Name of the resource in the schema file")
	flags.BoolVarP(&opts.debug, "debug", "D", false, "Enable debug logging")
	_ = cmd.MarkFlagRequired("resource")

	return cmd
}

func runExplain(out io.Writer, opts explainOptions, query string) error {
	conf, err := loadConfig(opts.configFile)
	if err != nil {
		return err
	}

	schema, err := loadSchema(opts.schemaFile, opts.resource)
	if err != nil {
		return err
	}

	res, err := schema.Resource(conf)
	if err != nil {
		return err
	}

	vals, err := url.ParseQuery(strings.TrimPrefix(query, "?"))
	if err != nil {
		return errors.Wrap(err, "failed to parse query string")
	}
	input := filterable.ParseQuery(vals)
	logrus.WithField("input", input).Debug("decoded query string")

	cond := schema.Cond()
	res.FilterFrom(&cond, input, nil)
	res.SearchFrom(&cond, input, nil)
	ords := res.Sort(input, nil)

	if cond.IsEmpty() {
		fmt.Fprintln(out, "where true")
	} else {
		fmt.Fprintf(out, "where %s\n", cond.Text)
	}
	if !ords.IsEmpty() {
		fmt.Fprintln(out, ords.String())
	}
	for i, arg := range cond.Args {
		fmt.Fprintf(out, "$%d = %#v\n", i+1, arg)
	}
	return nil
}

// Settings come from the optional file, then from FILTERABLE_* environment variables.
func loadConfig(path string) (filterable.Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return filterable.Config{}, errors.Wrapf(err, "failed to read config %q", path)
		}
		logrus.WithField("file", v.ConfigFileUsed()).Debug("loaded config")
	}

	return filterable.ConfigFrom(v)
}

func loadSchema(path, name string) (filterable.Schema, error) {
	file, err := os.Open(path)
	if err != nil {
		return filterable.Schema{}, errors.Wrap(err, "failed to open schema file")
	}
	defer file.Close()

	schemas, err := filterable.LoadSchemas(file)
	if err != nil {
		return filterable.Schema{}, err
	}

	schema, ok := schemas[name]
	if !ok {
		return filterable.Schema{}, errors.Errorf("no resource %q in %s", name, path)
	}
	return schema, nil
}
