package main

import "github.com/sadopc/focusnest/internal/cmd"

func main() {
	cmd.Execute()
}
