package main

import "github.com/rolznz/zap.stream/cmd/zapstream/cmd"

func main() {
	cmd.Execute()
}
