package main

import "github.com/aaearon/ssocode/cmd"

func main() {
	cmd.Execute()
}
