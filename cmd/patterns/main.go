package main

import "github.com/mvp-joe/project-patterns/internal/cli"

func main() {
	cli.Execute()
}
