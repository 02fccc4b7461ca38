package main

import "planctl/cmd"

func main() {
	cmd.Execute()
}
