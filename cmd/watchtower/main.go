package main

import "github.com/kieranyoussef/finops-watchtower/cmd/watchtower/cmd"

func main() {
	cmd.Execute()
}
