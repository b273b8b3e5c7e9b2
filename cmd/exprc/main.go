// Command exprc compiles expression scripts to node graphs from the
// command line, either once or continuously while watching a file.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gonodes/exprgraph/catalog"
	"github.com/gonodes/exprgraph/expr"
	"github.com/gonodes/exprgraph/ir"
)

var (
	flagFlavor   string
	flagInputs   []string
	flagMaxDepth int
	flagVerbose  bool
)

func main() {
	root := &cobra.Command{
		Use:           "exprc",
		Short:         "Expression to node-graph compiler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flagFlavor, "flavor", "f", "geometry",
		"target editor flavor (geometry, shader, compositor)")
	root.PersistentFlags().StringArrayVarP(&flagInputs, "input", "i", nil,
		"declare an input as name:type (scalar, integer, vector, color, boolean)")
	root.PersistentFlags().IntVar(&flagMaxDepth, "max-depth", 0,
		"expression nesting limit (0 = default)")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"enable debug logging")

	root.AddCommand(newCompileCmd())
	root.AddCommand(newWatchCmd())

	if err := root.Execute(); err != nil {
		var se *expr.SourceError
		if errors.As(err, &se) {
			fmt.Fprint(os.Stderr, se.FormatWithContext())
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func parseFlavor() (catalog.Flavor, error) {
	return catalog.ParseFlavor(flagFlavor)
}

// parseInputs turns repeated name:type flags into declarations.
func parseInputs() ([]expr.InputDecl, error) {
	decls := make([]expr.InputDecl, 0, len(flagInputs))
	for _, raw := range flagInputs {
		name, typeName, ok := strings.Cut(raw, ":")
		if !ok {
			return nil, fmt.Errorf("input %q: want name:type", raw)
		}
		t, err := parseType(typeName)
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", raw, err)
		}
		decls = append(decls, expr.InputDecl{Name: name, Type: t})
	}
	return decls, nil
}

func parseType(name string) (ir.DataType, error) {
	switch name {
	case "scalar", "float":
		return ir.TypeScalar, nil
	case "integer", "int":
		return ir.TypeInteger, nil
	case "vector", "vec":
		return ir.TypeVector3, nil
	case "color", "rgba":
		return ir.TypeColor4, nil
	case "boolean", "bool":
		return ir.TypeBoolean, nil
	default:
		return ir.TypeUnknown, fmt.Errorf("unknown type %q", name)
	}
}
