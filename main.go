package main

import (
	"fmt"
	"os"

	"github.com/ncecere/firecrawl-webui/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
