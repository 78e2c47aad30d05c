package main

import "medishare-cli/cmd"

func main() {
	cmd.Execute()
}
