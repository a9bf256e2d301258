package main

import (
	"db-bridge/cmd"
)

func main() {
	cmd.Execute()
}
