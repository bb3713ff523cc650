package main

import (
	"os"

	"github.com/AjianNie/TelegramForwarder2/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
