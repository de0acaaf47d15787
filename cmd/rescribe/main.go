package main

import "github.com/mvp-joe/rescribe/internal/cli"

func main() {
	cli.Execute()
}
