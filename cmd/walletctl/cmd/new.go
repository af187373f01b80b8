package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dwoura/privchain-wallet/pkg/bip32"
	"github.com/dwoura/privchain-wallet/pkg/bip39"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Generate a new wallet seed",
	Long:  `Generates a random BIP-39 mnemonic and prints the derived seed and master public key this instance's walletd would use.`,
	Run: func(cmd *cobra.Command, args []string) {
		mnemonicService := bip39.NewMnemonicService()
		mnemonic, err := mnemonicService.GenerateMnemonic(256)
		if err != nil {
			fmt.Printf("generate mnemonic: %v\n", err)
			return
		}
		fmt.Println("Mnemonic (store this offline, it controls every coin this wallet owns):")
		fmt.Println(mnemonic)

		seed := mnemonicService.MnemonicToSeed(mnemonic, "")
		fmt.Printf("Seed: %s\n", hex.EncodeToString(seed))

		wallet, err := bip32.NewMasterKeyFromSeed(seed)
		if err != nil {
			fmt.Printf("derive master key: %v\n", err)
			return
		}
		pub, err := wallet.MasterKey().ECPubKey()
		if err != nil {
			fmt.Printf("derive master public key: %v\n", err)
			return
		}
		fmt.Printf("Master public key: %s\n", hex.EncodeToString(pub.SerializeCompressed()))
		fmt.Println("Set WALLET_MNEMONIC (or config wallet.mnemonic) to this mnemonic before starting walletd.")
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
}
