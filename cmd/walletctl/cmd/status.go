package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [tx-id]",
	Short: "Fetch a transaction's current negotiation state",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		out, err := getJSON("/api/v1/tx/" + args[0])
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Printf("%+v\n", out["data"])
	},
}

var tickCmd = &cobra.Command{
	Use:   "tick [tx-id]",
	Short: "Manually re-enter the negotiation driver for a transaction",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		out, err := postJSON("/api/v1/tx/"+args[0]+"/tick", nil)
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Printf("%+v\n", out["data"])
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(tickCmd)
}
