package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func check(e error) {
	if e != nil {
		fmt.Printf("%v\n", e.Error())
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "cardlinkctl",
	Short:   "Cardlinkctl manages a cardlink digital business card server",
	Long:    `Cardlinkctl manages a cardlink digital business card server: generate the server signing keys and inspect their public half.`,
	Version: "0.1.0",
	Run: func(cmd *cobra.Command, args []string) {
		// empty
	},
}

func main() {
	Execute()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
