package main

import "steam-library/cmd"

func main() {
	cmd.Execute()
}
