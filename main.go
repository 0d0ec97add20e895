package main

import "dot/cmd"

func main() {
	cmd.Execute()
}
