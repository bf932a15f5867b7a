package main

import (
	cmd "github.com/rohmanhakim/coverart-fetcher/internal/cli"
)

func main() {
	cmd.Execute()
}
