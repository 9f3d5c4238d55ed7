package main

import "seoboard/cmd/sb/root"

func main() {
	root.Execute()
}
