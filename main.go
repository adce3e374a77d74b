package main

import "github.com/vibast-solutions/lib-go-subtrack/cmd"

func main() {
	cmd.Execute()
}
