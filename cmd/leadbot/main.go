package main

import (
	"log"

	"github.com/contact-solution/leadbot/core/cmd"
)

func main() {
	if err := cmd.Run(cmd.Options{
		DefaultConfigPath: "config.yaml",
	}); err != nil {
		log.Fatalf("leadbot: %v", err)
	}
}
