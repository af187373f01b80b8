package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var serverAddr string

var rootCmd = &cobra.Command{
	Use:   "walletctl",
	Short: "Operator CLI for the privacy wallet negotiation service",
	Long: `walletctl drives walletd from the command line: create sends and
splits, approve invitations held for manual review, and poll a
transaction's negotiation state.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", "http://localhost:8080", "walletd HTTP address")
}
