package main

import "github.com/oshokin/tempwatch/cmd/tempwatch-server/cmd"

func main() {
	cmd.Execute()
}
