package main

import "github.com/everFinance/arnames/cli/arnames/cmd"

func main() {
	cmd.Execute()
}
