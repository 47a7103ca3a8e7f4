package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/taskpad/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "taskpad: %v\n", err)
		os.Exit(1)
	}
}
