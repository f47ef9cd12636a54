// FILE: lixenwraith/motherboard/cmd/mbsim/main.go
package main

import (
	"context"
	"os"
)

func main() {
	if err := execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
