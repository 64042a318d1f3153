package main

import "github.com/couchcryptid/unit-conversion-service/internal/cli"

func main() {
	cli.Execute()
}
