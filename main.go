package main

import (
	"github.com/AzielCF/piebot/cmd"
)

func main() {
	cmd.Execute()
}
