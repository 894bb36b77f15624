// Command rzip builds and extracts rzip archives: a parallel file-tree
// packer with optional LZW compression and optional Threefish-256/CBC
// encryption.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rzip:", err)
		os.Exit(1)
	}
}
