package main

import (
	"os"

	"github.com/wonny/divcal/cmd/divcal/commands"
)

// main is the entry point for the divcal CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/divcal [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
