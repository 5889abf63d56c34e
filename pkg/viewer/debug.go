package viewer

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Debug logging controlled by TIV_DEBUG=<file>. The log goes to a file
// because stderr belongs to the terminal while the viewer owns it.
var debugOut *os.File

func init() {
	err := godotenv.Load()
	if err != nil {
		// .env is optional
	}
	if path := os.Getenv("TIV_DEBUG"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err == nil {
			debugOut = f
		}
	}
}

func debugf(format string, args ...interface{}) {
	if debugOut == nil {
		return
	}
	fmt.Fprintf(debugOut, "tiv: "+format+"\n", args...)
}
