package main

import "github.com/philipparndt/gcodeview/cmd"

func main() {
	cmd.Execute()
}
