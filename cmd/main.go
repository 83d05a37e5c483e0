package main

import "github.com/a9b3/aws-site-deploy/pkg/cli"

func main() {
	cli.Main()
}
