package main

import "github.com/ryanwalloh/assetkit/cmd"

func main() {
	cmd.Execute()
}
