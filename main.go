package main

import "github.com/notargets/gosweep/cmd"

func main() {
	cmd.Execute()
}
