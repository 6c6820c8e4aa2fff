package main

import "github.com/pandodao/zilt-wallet/cmd/wallet-cli/cmd"

func main() {
	cmd.Execute()
}
