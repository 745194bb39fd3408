package main

import "pet-medication-reminder/internal/cli"

func main() {
	cli.Execute()
}
