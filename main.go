package main

import "github.com/khrees2412/jobdeck/cmd"

func main() {
	cmd.Execute()
}
