package main

import "github.com/derickschaefer/aquarius/cmd"

func main() {
	cmd.Execute()
}
