package main

import (
	"github.com/LeJamon/goAMMd/internal/cli"

	// Transaction types register themselves in init.
	_ "github.com/LeJamon/goAMMd/internal/core/tx/all"
)

func main() {
	cli.Execute()
}
