package main

import "github.com/mpapenbr/irtelemetry/cmd"

func main() {
	cmd.Execute()
}
