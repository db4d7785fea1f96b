package main

import "github.com/sadopc/newlife/cmd"

func main() {
	cmd.Execute()
}
