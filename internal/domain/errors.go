package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedChain is returned when a chain has no configured endpoints or no dialer
	ErrUnsupportedChain = errors.New("unsupported chain")

	// ErrEnumerationCancelled is returned when an enumeration is stopped by its caller
	ErrEnumerationCancelled = errors.New("enumeration cancelled")
)

// AllEndpointsExhaustedError is returned when every configured endpoint of a chain failed its liveness probe
type AllEndpointsExhaustedError struct {
	Chain         Chain
	AttemptedURLs []string
	LastErr       error
}

func (e *AllEndpointsExhaustedError) Error() string {
	return fmt.Sprintf("all endpoints exhausted for chain %s (attempted: %s): %v",
		e.Chain, strings.Join(e.AttemptedURLs, ", "), e.LastErr)
}

func (e *AllEndpointsExhaustedError) Unwrap() error {
	return e.LastErr
}

// ChainUnavailableError is returned when the chain head height cannot be determined or is zero
type ChainUnavailableError struct {
	Chain Chain
	Cause error
}

func (e *ChainUnavailableError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("chain %s unavailable", e.Chain)
	}
	return fmt.Sprintf("chain %s unavailable: %v", e.Chain, e.Cause)
}

func (e *ChainUnavailableError) Unwrap() error {
	return e.Cause
}

// EnumerationUnsupportedError is returned when a contract does not expose the enumerable reads
type EnumerationUnsupportedError struct {
	Chain           Chain
	ContractAddress string
	Cause           error
}

func (e *EnumerationUnsupportedError) Error() string {
	return fmt.Sprintf("contract %s on %s does not support enumeration: %v", e.ContractAddress, e.Chain, e.Cause)
}

func (e *EnumerationUnsupportedError) Unwrap() error {
	return e.Cause
}

// BatchFetchFailureError is returned when any lookup in the index range [RangeStart, RangeEnd) failed
type BatchFetchFailureError struct {
	RangeStart uint64
	RangeEnd   uint64
	Cause      error
}

func (e *BatchFetchFailureError) Error() string {
	return fmt.Sprintf("failed to fetch tokens in range [%d, %d): %v", e.RangeStart, e.RangeEnd, e.Cause)
}

func (e *BatchFetchFailureError) Unwrap() error {
	return e.Cause
}
