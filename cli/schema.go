package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/frankonly/finite/finite"
	"github.com/frankonly/finite/merkle"
	"github.com/frankonly/finite/pflow"
)

var printGraph bool

var schemaCmd = &cobra.Command{
	Use:   "schema FILE",
	Short: "Compute the schema hash of a pflow model file offline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		model, err := pflow.Load(f)
		if err != nil {
			return err
		}

		graph := merkle.NewGraph()
		digest, err := finite.New(model, finite.WithGraph(graph))
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), digest.SchemaHash)
		if printGraph {
			fmt.Fprint(cmd.OutOrStdout(), graph.PrintGraph())
		}

		return nil
	},
}

func init() {
	schemaCmd.Flags().BoolVar(&printGraph, "graph", false, "print the merge graph of the schema accumulators")
}
