package questiongen

import "encoding/json"

// RawOutput is the model output handed to a Parser. It is one of
// TextBlock or StructuredJSON.
type RawOutput interface {
	isRawOutput()
}

// TextBlock is free-form text made of repeated "Q:", "A)".."D)", "Answer:"
// blocks.
type TextBlock string

// StructuredJSON is a JSON document produced under a response schema.
type StructuredJSON json.RawMessage

func (TextBlock) isRawOutput()      {}
func (StructuredJSON) isRawOutput() {}
