package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/frankonly/finite/finite"
)

var (
	action     string
	multiplier int64
	inputs     []string
	outputs    []string
)

var (
	digestCmd = &cobra.Command{
		Use:   "digest",
		Short: "Get the schema hash served by the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
			defer cancel()

			hash, err := Client().Schema(ctx)
			if err == nil {
				fmt.Fprintln(cmd.OutOrStdout(), hash)
			}

			return err
		},
	}

	commitCmd = &cobra.Command{
		Use:   "commit",
		Short: "Commit a transaction: --action send --input FA2A:1 --output FA2C:1",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			request, err := buildRequest(action, multiplier, inputs, outputs)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
			defer cancel()

			record, id, err := Client().Commit(ctx, request)
			if err != nil {
				return err
			}

			return printRecord(cmd.OutOrStdout(), record, id)
		},
	}

	getCmd = &cobra.Command{
		Use:   "get CID",
		Short: "Get a committed transaction by CID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
			defer cancel()

			record, id, err := Client().Get(ctx, args[0])
			if err != nil {
				return err
			}

			return printRecord(cmd.OutOrStdout(), record, id)
		},
	}
)

func init() {
	commitCmd.Flags().StringVar(&action, "action", "", "transition to fire")
	commitCmd.Flags().Int64Var(&multiplier, "multiplier", 1, "number of times to fire the action")
	commitCmd.Flags().StringSliceVar(&inputs, "input", nil, "debit as address:amount, repeatable")
	commitCmd.Flags().StringSliceVar(&outputs, "output", nil, "credit as address:amount, repeatable")
	_ = commitCmd.MarkFlagRequired("action")
}

func buildRequest(action string, multiplier int64, inputs, outputs []string) (*finite.Record, error) {
	request := &finite.Record{Command: &finite.Command{Action: action, Multiplier: multiplier}}

	for _, in := range inputs {
		amount, err := parseAmount(in)
		if err != nil {
			return nil, err
		}
		request.Input = append(request.Input, amount)
	}

	for _, out := range outputs {
		amount, err := parseAmount(out)
		if err != nil {
			return nil, err
		}
		request.Output = append(request.Output, amount)
	}

	return request, nil
}

func parseAmount(value string) (finite.AddressAmount, error) {
	i := strings.LastIndex(value, ":")
	if i <= 0 {
		return finite.AddressAmount{}, fmt.Errorf("invalid address:amount %q", value)
	}

	amount, err := strconv.ParseInt(value[i+1:], 10, 64)
	if err != nil {
		return finite.AddressAmount{}, fmt.Errorf("invalid amount in %q: %w", value, err)
	}

	return finite.AddressAmount{Address: value[:i], Amount: amount}, nil
}

func printRecord(w io.Writer, record *finite.Record, id string) error {
	s, err := record.Struct()
	if err != nil {
		return err
	}

	data, err := protojson.MarshalOptions{Multiline: true}.Marshal(s)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "cid: %s\n%s\n", id, data)
	return nil
}
