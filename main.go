package main

import (
	"fmt"
	"os"

	"fjacquet/moneyview/cmd/balance"
	"fjacquet/moneyview/cmd/importer"
	"fjacquet/moneyview/cmd/parse"
	"fjacquet/moneyview/cmd/retag"
	"fjacquet/moneyview/cmd/root"
	"fjacquet/moneyview/cmd/tags"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(parse.Cmd)
	root.Cmd.AddCommand(importer.Cmd)
	root.Cmd.AddCommand(retag.Cmd)
	root.Cmd.AddCommand(balance.Cmd)
	root.Cmd.AddCommand(tags.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
