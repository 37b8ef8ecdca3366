package main

import "github.com/gaurav-prasanna/strokepipe/cmd"

func main() {
	cmd.Execute()
}
