// Command walletctl is the operator CLI, grounded on
// wallet-core/cmd/wallet-cli's cobra structure.
package main

import "github.com/dwoura/privchain-wallet/cmd/walletctl/cmd"

func main() {
	cmd.Execute()
}
