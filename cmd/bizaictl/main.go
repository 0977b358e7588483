package main

import "bizai/internal/ctl"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctl.Execute(version)
}
