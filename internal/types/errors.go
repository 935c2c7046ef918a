package types

import (
	"errors"
	"fmt"
	"time"
)

type FetchError struct {
	Source     string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.Source, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func NewFetchError(source, url string, statusCode int, err error) *FetchError {
	return &FetchError{
		Source:     source,
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}

// RateLimitedError signals an HTTP 429. The client has already waited
// RetryAfter before returning it, so callers only need to skip the tick.
type RateLimitedError struct {
	Source     string
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s: rate limited, retried after %v", e.Source, e.RetryAfter)
}

type ParseError struct {
	Source string
	Mode   FetchMode
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s (%s): %v", e.Source, e.Mode, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func NewParseError(source string, mode FetchMode, err error) *ParseError {
	return &ParseError{Source: source, Mode: mode, Err: err}
}

type DeliveryError struct {
	Source    string
	ItemID    string
	ChannelID string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver %s item %s to channel %s: %v", e.Source, e.ItemID, e.ChannelID, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

func IsRateLimited(err error) bool {
	var rl *RateLimitedError
	return errors.As(err, &rl)
}

func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

func IsDeliveryError(err error) bool {
	var de *DeliveryError
	return errors.As(err, &de)
}
