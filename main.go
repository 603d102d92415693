package main

import "logagent/cmd"

func main() {
	cmd.Execute()
}
