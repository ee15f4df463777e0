package main

import "github.com/shouni/go-company-classifier/cmd"

func main() {
	cmd.Execute()
}
