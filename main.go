package main

import "github.com/ox01024/bb-browser/cmd"

func main() {
	cmd.Execute()
}
