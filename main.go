package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/abhisek/sokrates/cmd"
)

func main() {
	// Local .env is optional; environment variables win.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
