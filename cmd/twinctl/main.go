package main

import "github.com/jengzang/healthtwin-backend/cmd/twinctl/root"

func main() {
	root.Execute()
}
