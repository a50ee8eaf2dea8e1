package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/flowise-mcp/internal/platform/errors"
	"github.com/louisbranch/flowise-mcp/internal/services/mcp/flowise"
)

// streamSeparator joins streamed prediction fragments into one text result.
const streamSeparator = "\n"

// encodeRecord serializes a remote record as the tool's text result.
func encodeRecord(record any) (string, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeUnknown, "encode result", err)
	}
	return string(data), nil
}

// encodeList serializes a record list; an empty list is "[]", never "null".
func encodeList[T any](records []T) (string, error) {
	if records == nil {
		records = []T{}
	}
	return encodeRecord(records)
}

// confirm turns a completed delete into its fixed confirmation sentence.
func confirm(message string, err error) (string, error) {
	if err != nil {
		return "", err
	}
	return message, nil
}

// drainStream reads every fragment of stream in delivery order and joins
// them. A stream that fails part way yields no text, only the error.
func drainStream(stream *flowise.Stream) (string, error) {
	defer stream.Close()
	var fragments []string
	for stream.Next() {
		fragments = append(fragments, stream.Text())
	}
	if err := stream.Err(); err != nil {
		return "", fmt.Errorf("prediction stream failed after %d fragments: %w", len(fragments), err)
	}
	return strings.Join(fragments, streamSeparator), nil
}
