package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var (
	splitMyID   string
	splitFee    uint64
	splitAmount []uint64
)

// uint64SliceValue adapts []uint64 to pflag.Value since pflag has no
// built-in Uint64SliceVar.
type uint64SliceValue []uint64

func (v *uint64SliceValue) String() string {
	parts := make([]string, len(*v))
	for i, n := range *v {
		parts[i] = strconv.FormatUint(n, 10)
	}
	return strings.Join(parts, ",")
}

func (v *uint64SliceValue) Set(s string) error {
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return err
		}
		*v = append(*v, n)
	}
	return nil
}

func (v *uint64SliceValue) Type() string {
	return "uint64Slice"
}

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Start a self-transaction splitting coins into new amounts",
	Run: func(cmd *cobra.Command, args []string) {
		out, err := postJSON("/api/v1/tx/split", map[string]any{
			"my_wallet_id": splitMyID,
			"amounts":      splitAmount,
			"fee":          splitFee,
		})
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Printf("%+v\n", out["data"])
	},
}

func init() {
	rootCmd.AddCommand(splitCmd)

	splitCmd.Flags().StringVar(&splitMyID, "wallet", "", "wallet id")
	splitCmd.Flags().Var((*uint64SliceValue)(&splitAmount), "amount", "output amount, repeatable")
	splitCmd.Flags().Uint64Var(&splitFee, "fee", 0, "fee")

	splitCmd.MarkFlagRequired("wallet")
	splitCmd.MarkFlagRequired("amount")
}
