package main

import (
	"os"

	"servingd/internal/servectl"
)

func main() {
	os.Exit(servectl.Main(os.Args[1:]))
}
