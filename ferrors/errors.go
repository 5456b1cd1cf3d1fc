// Package ferrors defines the structured error types returned by the
// reader, sfnt, woff2, and msdf packages. Each type carries the fields a
// caller needs to diagnose a malformed font without re-parsing it.
package ferrors

import "fmt"

// UnexpectedEndOfData reports that a read needed more bytes than were
// available at the current cursor position.
type UnexpectedEndOfData struct {
	Needed    int
	Available int
}

func (e *UnexpectedEndOfData) Error() string {
	return fmt.Sprintf("unexpected end of data: needed %d bytes, %d available", e.Needed, e.Available)
}

// InvalidContainer reports a malformed sfnt/WOFF2 container: a bad magic
// number, an out-of-range table count, a directory that runs past the end
// of the file.
type InvalidContainer struct {
	What string
}

func (e *InvalidContainer) Error() string {
	return "invalid container: " + e.What
}

// InvalidTable reports a table whose structure doesn't match its format,
// keyed by the table's 4-byte tag.
type InvalidTable struct {
	Tag    string
	Reason string
}

func (e *InvalidTable) Error() string {
	return fmt.Sprintf("invalid %s table: %s", e.Tag, e.Reason)
}

// VariableLengthOverflow reports a UIntBase128 value whose continuation
// bytes never terminated within 5 bytes, whose accumulator exceeded
// 0x1FFFFF, or that used a non-minimal encoding.
type VariableLengthOverflow struct {
	Encoding string
}

func (e *VariableLengthOverflow) Error() string {
	return "variable-length integer overflow: " + e.Encoding
}

// CompressionFailure reports a Brotli stream that failed to decompress,
// or whose decompressed size didn't match the table directory's declared
// length.
type CompressionFailure struct {
	Reason string
}

func (e *CompressionFailure) Error() string {
	return "decompression failed: " + e.Reason
}

