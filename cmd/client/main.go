package main

import "mydiary/cmd/client/cmd"

func main() {
	cmd.Execute()
}
