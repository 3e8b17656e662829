package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cardlink/go-cardlink-server/types"
)

var keyFile string

func init() {
	pubkeyCmd.Flags().StringVarP(&keyFile, "keyFile", "f", "", "json file with stored server keys")
	pubkeyCmd.MarkFlagRequired("keyFile")
	rootCmd.AddCommand(pubkeyCmd)
}

// pubkeyCmd prints the public half of a generated server keypair so it can be
// shared with clients verifying session tokens
var pubkeyCmd = &cobra.Command{
	Use:   "pubkey",
	Short: "Print the server public key",
	Long:  "Print the base64 encoded ed25519 public key from a server keys file",
	Run: func(cmd *cobra.Command, args []string) {
		content, err := os.ReadFile(keyFile)
		check(err)

		var keys types.ServerKeys
		err = json.Unmarshal(content, &keys)
		check(err)

		if keys.PublicKey == "" {
			fmt.Println("no public key found in file")
			os.Exit(1)
		}
		fmt.Println(keys.PublicKey)
	},
}
