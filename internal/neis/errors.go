package neis

import "fmt"

// NotFoundMessage is carried by NotFoundError.
const NotFoundMessage = "급식정보를 찾을 수 없습니다."

// TransportError is returned when the API answers with a non-2xx status.
type TransportError struct {
	Status int
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("meal api error: status %d", e.Status)
}

// ParseError is returned when the response body is not valid JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to decode response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NotFoundError is returned when the response matches neither known shape.
type NotFoundError struct{}

func (e *NotFoundError) Error() string {
	return NotFoundMessage
}
