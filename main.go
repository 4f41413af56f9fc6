package main

import "zstream/cmd"

func main() {
	cmd.Execute()
}
