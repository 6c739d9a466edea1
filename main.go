package main

import "mediahub/cmd"

func main() {
	cmd.Execute()
}
