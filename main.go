package main

import "github.com/dwe-corp/facial-auth/cmd"

func main() {
	cmd.Execute()
}
