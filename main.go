package main

import "github.com/ArcSyn/TRUECAPTIONTOOL1-sub001/internal/cli"

func main() {
	cli.Main()
}
