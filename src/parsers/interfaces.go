// backend/src/parsers/interfaces.go
package parsers

import (
	"io"
)

// Decoder turns a raw template payload into a rectangular grid of text cells.
type Decoder interface {
	Decode(file io.Reader) ([][]string, error)
}

// Mapper projects a decoded grid into typed asset records.
type Mapper interface {
	Map(grid [][]string) (*MapResult, error)
}
