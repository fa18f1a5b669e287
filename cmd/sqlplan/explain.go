package main

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/src-d/go-sql-planner"
	"github.com/src-d/go-sql-planner/mem"
	"github.com/src-d/go-sql-planner/sql"
)

type explainOptions struct {
	catalog         string
	config          string
	database        string
	debug           bool
	caseInsensitive bool
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "sqlplan",
		Short:         "sqlplan compiles SELECT queries into plan trees.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newExplainCommand())
	return root
}

func newExplainCommand() *cobra.Command {
	var opts explainOptions

	cmd := &cobra.Command{
		Use:   "explain [flags] QUERY",
		Short: "Print the plan of a query. Use - to read the query from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := args[0]
			if query == "-" {
				data, err := ioutil.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				query = string(data)
			}

			out, err := explain(opts, query)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(out, "\n"))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.catalog, "catalog", "", "YAML file describing the databases and tables.")
	flags.StringVar(&opts.config, "config", "", "YAML file with the engine configuration.")
	flags.StringVar(&opts.database, "db", "", "Database used to resolve unqualified tables.")
	flags.BoolVar(&opts.debug, "debug", false, "Log every planning step.")
	flags.BoolVar(&opts.caseInsensitive, "case-insensitive", false, "Match identifiers ignoring case.")
	_ = cmd.MarkFlagRequired("catalog")

	return cmd
}

func explain(opts explainOptions, query string) (string, error) {
	cfg := &sqle.Config{}
	if opts.config != "" {
		var err error
		if cfg, err = sqle.LoadConfig(opts.config); err != nil {
			return "", err
		}
	}

	if opts.debug {
		cfg.Debug = true
		logrus.SetLevel(logrus.DebugLevel)
	}
	if opts.caseInsensitive {
		cfg.CaseInsensitive = true
	}
	if opts.database != "" {
		cfg.CurrentDatabase = opts.database
	}

	e, err := sqle.New(cfg)
	if err != nil {
		return "", err
	}

	f, err := os.Open(opts.catalog)
	if err != nil {
		return "", err
	}
	defer f.Close()

	dbs, err := mem.Load(f)
	if err != nil {
		return "", err
	}
	for _, db := range dbs {
		e.AddDatabase(db)
	}

	ctx := sql.NewContext(context.Background(), sql.WithQuery(query))
	logrus.WithField("catalog", opts.catalog).Debugf("loaded %d databases", len(dbs))

	out, err := e.Explain(ctx, query)
	if err != nil {
		return "", fmt.Errorf("%s: %s", color.YellowString(query), err)
	}

	return out, nil
}
