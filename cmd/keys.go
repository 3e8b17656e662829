package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cardlink/go-cardlink-server/types"
)

var outputFile string

func init() {
	keysCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default is stdout)")
	rootCmd.AddCommand(keysCmd)
}

// keysCmd generates the ed25519 signing keypair the server uses for session tokens
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Generate ed25519 server keys",
	Long:  "Generate the ed25519 signing keypair the cardlink server uses for session tokens",
	Run: func(cmd *cobra.Command, args []string) {
		public, private, err := ed25519.GenerateKey(rand.Reader)
		check(err)

		keys := types.ServerKeys{
			PrivateKey: base64.StdEncoding.EncodeToString(private),
			PublicKey:  base64.StdEncoding.EncodeToString(public),
			Created:    time.Now().UnixMilli(),
		}
		fileBytes, err := json.MarshalIndent(keys, "", "  ")
		check(err)

		if outputFile != "" {
			// fail if file already exists
			if _, sErr := os.Stat(outputFile); !errors.Is(sErr, os.ErrNotExist) {
				fmt.Printf("File already exists: %s\n", outputFile)
				os.Exit(1)
			}
			err = os.WriteFile(outputFile, fileBytes, 0600)
			check(err)
			fmt.Printf("Output file: %s\n", outputFile)
		} else {
			fmt.Printf("\n%s\n", string(fileBytes))
		}
	},
}
