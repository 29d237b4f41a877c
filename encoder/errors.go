package encoder

import "fmt"

// EncodeError reports that a value could not be written into a request body.
// Err is nil when no codec accepted the value at all.
type EncodeError struct {
	ValueType   string
	ContentType string
	Err         error
}

func (e *EncodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("could not write request: no suitable codec for [%s] and content type [%s]", e.ValueType, e.ContentType)
	}
	return fmt.Sprintf("could not write request of type [%s] as [%s]: %v", e.ValueType, e.ContentType, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// DecodeError reports that a response body could not be read into the target.
type DecodeError struct {
	TargetType  string
	ContentType string
	Status      int
	Err         error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("could not read response (status %d): no suitable codec for [%s] and content type [%s]", e.Status, e.TargetType, e.ContentType)
	}
	return fmt.Sprintf("could not read response (status %d) into [%s] as [%s]: %v", e.Status, e.TargetType, e.ContentType, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
