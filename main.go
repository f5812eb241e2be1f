package main

import (
	"dhammasound/cmd"
)

func main() {
	cmd.Execute()
}
