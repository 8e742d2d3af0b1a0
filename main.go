package main

import (
	"etf-return-stats/internal/cli"
)

func main() {
	cli.Execute()
}
