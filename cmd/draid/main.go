// Command draid runs one data-rule propagation pass over a workflow graph,
// wiring the rule database, the in-memory graph loader, the propagation
// driver, and the obligation log together, in the shape of
// original_source/draid/main.py's main()/propagate_single().
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gofrs/uuid/v5"
	"github.com/spf13/cobra"

	"github.com/renyuneyun/dr.aid/engine"
	"github.com/renyuneyun/dr.aid/graph"
	"github.com/renyuneyun/dr.aid/obligationlog"
	"github.com/renyuneyun/dr.aid/ruledb"
	"github.com/renyuneyun/dr.aid/script"
	"github.com/renyuneyun/dr.aid/types"
)

var (
	verbose       int
	endpoint      string
	scheme        string
	allInOne      bool
	ruleDBPaths   []string
	writeTarget   string
	obligationLog string
	graphScopeID  string
)

var rootCmd = &cobra.Command{
	Use:   "draid",
	Short: "Propagate data-handling obligations over a workflow provenance graph",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Load a workflow graph, inject rules, and run one propagation pass",
	RunE:  runPropagation,
}

func init() {
	runCmd.Flags().StringVar(&endpoint, "endpoint", "", "workflow description (JSON file path)")
	runCmd.Flags().StringVar(&scheme, "scheme", "SPROV", "provenance scheme tag (SPROV|CWLPROV); logged only")
	runCmd.Flags().BoolVar(&allInOne, "all-in-one", false, "reasoning mode tag; batched propagation always runs regardless")
	runCmd.Flags().StringArrayVar(&ruleDBPaths, "rule-db", nil, "rule database JSON file (repeatable; later files win on conflicting keys)")
	runCmd.Flags().StringVar(&writeTarget, "write-target", "", "file to append derived output-port rules to")
	runCmd.Flags().StringVar(&obligationLog, "obligation-log", "", "file to append activated obligations to")
	runCmd.Flags().StringVar(&graphScopeID, "graph-id", "", "rule-database graph scope id (defaults to the global scope)")
	runCmd.Flags().CountVarP(&verbose, "verbose", "v", "increase log verbosity (repeatable)")
	_ = runCmd.MarkFlagRequired("endpoint")

	rootCmd.AddCommand(runCmd)
}

func runPropagation(cmd *cobra.Command, args []string) error {
	logger := types.NewDefaultLogger()

	runID, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("generate run id: %w", err)
	}
	logger.Printf("run %s: loading workflow from %s (scheme=%s)", runID, endpoint, scheme)

	f, err := os.Open(endpoint)
	if err != nil {
		return fmt.Errorf("open workflow description: %w", err)
	}
	defer f.Close()

	g, err := graph.Load(f)
	if err != nil {
		return fmt.Errorf("load workflow graph: %w", err)
	}

	for _, path := range ruleDBPaths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read rule database %s: %w", path, err)
		}
		db, err := ruledb.Load(raw)
		if err != nil {
			return fmt.Errorf("parse rule database %s: %w", path, err)
		}
		if err := db.Inject(g, graphScopeID); err != nil {
			return fmt.Errorf("inject rules from %s: %w", path, err)
		}
	}

	var obLog *obligationlog.Log
	if obligationLog != "" {
		obLog, err = obligationlog.Open(obligationLog)
		if err != nil {
			return fmt.Errorf("open obligation log: %w", err)
		}
	}

	config := types.NewConfig(
		types.WithLogger(logger),
		types.WithScriptEngine(script.NewExprEngine()),
		types.WithScriptEngine(script.NewJSEngine()),
		types.WithObligationSink(func(componentURI string, ob types.ActivatedObligation) {
			if obLog != nil {
				obLog.Insert(componentURI, []types.ActivatedObligation{ob})
			}
		}),
	)

	driver := engine.New(config, engine.ValidatorAspect{})
	if err := driver.Run(cmd.Context(), g); err != nil {
		return fmt.Errorf("run %s: %w", runID, err)
	}

	if writeTarget != "" {
		if err := ruledb.WriteBack(g, writeTarget); err != nil {
			return fmt.Errorf("write back derived rules: %w", err)
		}
	}
	if obLog != nil {
		if err := obLog.Write(); err != nil {
			return fmt.Errorf("write obligation log: %w", err)
		}
	}

	logger.Printf("run %s: finished", runID)
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
