package main

import "github.com/gaurav-prasanna/mailscrub/cmd"

func main() {
	cmd.Execute()
}
