package main

import "github.com/arsipku/arsipd/cmd/arsipd/cmd"

func main() {
	cmd.Execute()
}
