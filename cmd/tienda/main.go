package main

import (
	"fmt"
	"os"

	"github.com/farmasanti/tienda/internal/observability/logger"
	"github.com/joho/godotenv"
)

func main() {
	// .env es opcional: sin archivo se usan las variables del sistema.
	_ = godotenv.Load()

	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	err := newRootCmd(a).Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
