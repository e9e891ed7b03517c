package main

import "github.com/Alb-O/ruskel/cmd"

func main() {
	cmd.Execute()
}
