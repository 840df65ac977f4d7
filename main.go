package main

import "github.com/Tiliavir/synthetic/cmd"

func main() {
	cmd.Execute()
}
