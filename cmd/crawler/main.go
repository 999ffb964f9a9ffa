// Package main provides the entry point for the crawler CLI.
//
// crawler recursively follows the links of one or more seed pages and
// downloads the images it finds along the way.
//
// Usage:
//
//	crawler https://example.com/
//	crawler -d 2 -o ./images https://example.com/ https://example.org/
//
// See --help for all available options.
package main

func main() {
	Execute()
}
