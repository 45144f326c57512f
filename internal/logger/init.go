package logger

import (
	"os"
)

// InitPterm sends diagnostic output to stderr so stdout only carries
// tables and JSON.
func InitPterm() {
	SetOutput(os.Stderr)

	// Tables are command output, they keep writing to stdout.
}
