package main

import "github.com/frahmantamala/issue-management/cmd"

func main() {
	cmd.Execute()
}
