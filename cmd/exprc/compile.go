package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gonodes/exprgraph/delta"
	"github.com/gonodes/exprgraph/engine"
	"github.com/gonodes/exprgraph/store"
)

func newCompileCmd() *cobra.Command {
	var (
		flagEdits bool
		flagDB    string
		flagUnit  string
	)

	cmd := &cobra.Command{
		Use:   "compile <script.expr>",
		Short: "Compile a script once and print the resulting graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()

			flavor, err := parseFlavor()
			if err != nil {
				return err
			}
			inputs, err := parseInputs()
			if err != nil {
				return err
			}
			source, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			unit, err := engine.New(engine.Config{
				Flavor:   flavor,
				MaxDepth: flagMaxDepth,
				Inputs:   inputs,
				Logger:   log,
			})
			if err != nil {
				return err
			}

			var st *store.Store
			unitKey := flagUnit
			if unitKey == "" {
				unitKey = args[0]
			}
			if flagDB != "" {
				st, err = store.New(flagDB)
				if err != nil {
					return err
				}
				defer st.Close()
				if baseline, err := st.LoadBaseline(unitKey); err == nil {
					unit.SetBaseline(baseline)
					log.Debug().Str("unit", unitKey).Msg("baseline restored")
				}
			}

			script, err := unit.Compile(string(source), nil)
			if err != nil {
				return err
			}

			if flagEdits {
				printEdits(script)
			} else {
				fmt.Print(unit.Baseline().Dump())
			}

			if st != nil {
				if err := st.SaveBaseline(unitKey, unit.Baseline()); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagEdits, "edits", false,
		"print the edit script against the stored baseline instead of the graph")
	cmd.Flags().StringVar(&flagDB, "db", "", "SQLite database for baselines")
	cmd.Flags().StringVar(&flagUnit, "unit", "", "baseline key (defaults to the script path)")
	return cmd
}

func printEdits(script *delta.Script) {
	if script.Empty() {
		fmt.Println("no changes")
		return
	}
	for _, op := range script.Ops {
		switch op.Kind {
		case delta.DeleteEdge, delta.CreateEdge:
			fmt.Printf("%s %s -> %s:%d\n", op.Kind,
				op.Edge.From.Short(), op.Edge.To.Short(), op.Edge.ToSlot)
		case delta.CreateNode:
			fmt.Printf("%s %s %s %s\n", op.Kind,
				op.Node.Short(), op.Payload.Kind, op.Payload.Operation)
		default:
			fmt.Printf("%s %s\n", op.Kind, op.Node.Short())
		}
	}
	fmt.Println(script.Summary())
}
