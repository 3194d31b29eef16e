package main

import (
	"os"

	"github.com/denismitr/stockresizer/cmd/resizectl/cmd"
)

func main() {
	if err := cmd.New().Execute(); err != nil {
		os.Exit(1)
	}
}
