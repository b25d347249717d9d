package events

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrProducerClosed  = errors.New("producer is closed")
	ErrConsumerClosed  = errors.New("consumer is closed")
	ErrPublisherClosed = errors.New("publisher is closed")
	ErrEmptyKey        = errors.New("message key cannot be empty")
	ErrEmptyValue      = errors.New("message value cannot be empty")
)

type ErrorType int

const (
	ErrorTypeTransient ErrorType = iota
	ErrorTypePermanent
)

// EventError marks a handler failure as worth retrying or not.
type EventError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *EventError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *EventError) Unwrap() error {
	return e.Err
}

func NewTransientError(message string, err error) *EventError {
	return &EventError{Type: ErrorTypeTransient, Message: message, Err: err}
}

func NewPermanentError(message string, err error) *EventError {
	return &EventError{Type: ErrorTypePermanent, Message: message, Err: err}
}

var transientPatterns = []string{
	"connection refused",
	"timeout",
	"deadline exceeded",
	"no such host",
	"network is unreachable",
	"broken pipe",
	"connection reset",
	"temporary failure",
}

// ClassifyError treats unknown errors as permanent unless the text looks like
// a network problem.
func ClassifyError(err error) ErrorType {
	var eventErr *EventError
	if errors.As(err, &eventErr) {
		return eventErr.Type
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range transientPatterns {
		if strings.Contains(msg, pattern) {
			return ErrorTypeTransient
		}
	}
	return ErrorTypePermanent
}

func ShouldRetry(err error, currentRetries, maxRetries int) bool {
	if err == nil || currentRetries >= maxRetries {
		return false
	}
	return ClassifyError(err) == ErrorTypeTransient
}
