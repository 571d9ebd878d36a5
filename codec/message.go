package codec

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/proto"
)

// ErrNotMessage is returned when a value handed to a codec is not a
// proto.Message.
var ErrNotMessage = errors.New("value is not a proto.Message")

func message(v any) (proto.Message, error) {
	m, ok := v.(proto.Message)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotMessage, v)
	}
	return m, nil
}
