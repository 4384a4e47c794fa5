package main

import "github.com/nuclearcat/mybackup/cmd"

func main() {
	cmd.Execute()
}
