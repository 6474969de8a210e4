package main

import "github.com/blackpiratelive/gallery-app/cmd"

func main() {
	cmd.Run()
}
