package main

import (
	"sonarlens/internal/cli"
)

func main() {
	cli.Execute()
}
