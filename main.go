package main

import "github.com/relloyd/ctadmin/cmd"

func main() {
	cmd.Execute()
}
