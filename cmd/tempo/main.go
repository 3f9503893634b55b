// Package main provides the tempo CLI: build a time-series transformer from
// a YAML spec and run it over CSV windows.
package main

func main() {
	Execute()
}
