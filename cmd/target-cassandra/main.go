package main

import "github.com/coeff/target-cassandra/cmd"

func main() {
	cmd.Execute()
}
