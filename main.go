package main

import "github.com/Yigal/bookmarkable/cmd"

func main() {
	cmd.Execute()
}
