// AlgoKit lora - desktop shell for the lora web UI.
//
// The operating system starts this binary for algokit-lora:// links. The
// first process opens the window; later ones hand their URL to it and exit.
//
// Build with: wails build
package main

import (
	"embed"
	"fmt"
	"os"
	"runtime"

	"github.com/algorandfoundation/algokit-lora/internal/cli"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	// Wails uses its own webview input handling; ibus is unnecessary.
	if runtime.GOOS == "linux" && os.Getenv("GTK_IM_MODULE") == "" {
		os.Setenv("GTK_IM_MODULE", "none")
	}

	if err := cli.Execute(assets); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
