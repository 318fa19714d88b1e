package main

import (
	"github.com/Epistemic-Technology/pdf-organizer/internal/command"
)

func main() {
	command.Main(
		"pdf-organizer", "merge, split, reorder and extract images from PDF documents",
	)
}
