package main

import "github.com/KaramelBytes/pulseboard/cmd"

func main() {
	cmd.Execute()
}
