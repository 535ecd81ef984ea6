package main

import "github.com/llehouerou/go-graphql-variants/internal/cli"

func main() {
	cli.Execute()
}
