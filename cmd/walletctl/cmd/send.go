package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	sendMyID   string
	sendPeerID string
	sendAmount uint64
	sendFee    uint64
	sendMsg    string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Start a two-party send negotiation",
	Run: func(cmd *cobra.Command, args []string) {
		out, err := postJSON("/api/v1/tx/send", map[string]any{
			"my_wallet_id":   sendMyID,
			"peer_wallet_id": sendPeerID,
			"amount":         sendAmount,
			"fee":            sendFee,
			"message":        sendMsg,
		})
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Printf("%+v\n", out["data"])
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVar(&sendMyID, "from", "", "sender wallet id")
	sendCmd.Flags().StringVar(&sendPeerID, "to", "", "peer wallet id")
	sendCmd.Flags().Uint64Var(&sendAmount, "amount", 0, "amount")
	sendCmd.Flags().Uint64Var(&sendFee, "fee", 0, "fee")
	sendCmd.Flags().StringVar(&sendMsg, "message", "", "optional message")

	sendCmd.MarkFlagRequired("from")
	sendCmd.MarkFlagRequired("to")
	sendCmd.MarkFlagRequired("amount")
}
