package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents network-related errors
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeBrowser represents headless-browser errors
	ErrorTypeBrowser ErrorType = "browser"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeStore represents persistence errors
	ErrorTypeStore ErrorType = "store"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// HarvestError represents an error raised while harvesting an area
type HarvestError struct {
	Type    ErrorType
	Area    string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *HarvestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Area, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Area, e.Message)
}

// Unwrap returns the underlying error
func (e *HarvestError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is retryable
func (e *HarvestError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeNetwork, ErrorTypeBrowser:
		return true
	default:
		return false
	}
}

// New creates a new HarvestError
func New(errType ErrorType, area, message string, err error) *HarvestError {
	return &HarvestError{
		Type:    errType,
		Area:    area,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(area, message string, err error) *HarvestError {
	return New(ErrorTypeNetwork, area, message, err)
}

// NewBrowser creates a new browser error
func NewBrowser(area, message string, err error) *HarvestError {
	return New(ErrorTypeBrowser, area, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(area, message string, err error) *HarvestError {
	return New(ErrorTypeParsing, area, message, err)
}

// NewStore creates a new store error
func NewStore(area, message string, err error) *HarvestError {
	return New(ErrorTypeStore, area, message, err)
}

// NewCache creates a new cache error
func NewCache(area, message string, err error) *HarvestError {
	return New(ErrorTypeCache, area, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(area, message string, err error) *HarvestError {
	return New(ErrorTypePublisher, area, message, err)
}

// NewValidation creates a new validation error
func NewValidation(area, message string) *HarvestError {
	return New(ErrorTypeValidation, area, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *HarvestError {
	return New(ErrorTypeConfiguration, "", message, err)
}
