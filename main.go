package main

import "github.com/KaramelBytes/medintel-cli/cmd"

func main() {
	cmd.Execute()
}
