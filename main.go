package main

import "tlf-sync/cmd"

func main() {
	cmd.Execute()
}
