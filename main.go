package main

import "github.com/Norgate-AV/buildcache/cmd"

func main() {
	cmd.Execute()
}
