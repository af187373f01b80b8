package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var approveCmd = &cobra.Command{
	Use:   "approve [tx-id]",
	Short: "Approve a send held for manual confirmation",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		out, err := postJSON("/api/v1/tx/"+args[0]+"/approve", nil)
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Printf("%+v\n", out["data"])
	},
}

func init() {
	rootCmd.AddCommand(approveCmd)
}
