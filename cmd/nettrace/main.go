package main

import "github.com/OpenTraceLab/kicad-nettrace/cmd/nettrace/cmd"

func main() {
	cmd.Execute()
}
