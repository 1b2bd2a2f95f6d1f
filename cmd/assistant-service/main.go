package main

import (
	"os"

	"github.com/sakjin112/personal-ai-assistant/server/assistantservice"
)

func main() {
	if err := assistantservice.Run(); err != nil {
		os.Exit(1)
	}
}
