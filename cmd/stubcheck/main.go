package main

import "github.com/mvp-joe/stubcheck/internal/cli"

func main() {
	cli.Execute()
}
