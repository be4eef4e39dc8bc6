package mapper

import (
	"log"
	"os"
)

// logger logs tolerated mapping errors (missing child rows) per
// spec.md §7: these are recoverable and must not abort the mapper, but
// are worth surfacing to an operator. Callers may redirect output by
// swapping logger's writer.
var logger = log.New(os.Stderr, "mapper: ", log.LstdFlags)
