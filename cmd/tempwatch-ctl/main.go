package main

import "github.com/oshokin/tempwatch/cmd/tempwatch-ctl/cmd"

func main() {
	cmd.Execute()
}
