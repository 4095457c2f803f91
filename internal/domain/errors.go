package domain

import "errors"

var (
	// ErrBarcodeTooShort is returned when a scan yields fewer than 8 digits,
	// too short to be any supported symbology
	ErrBarcodeTooShort = errors.New("barcode has fewer than 8 digits")

	// ErrProductNotFound is returned by a lookup source that has no data for
	// a barcode; the chain treats it as "advance to the next source"
	ErrProductNotFound = errors.New("product not found")

	// ErrNoBarcodeFound is returned when every region and both engines fail
	// to decode anything from an uploaded image
	ErrNoBarcodeFound = errors.New("no barcode recognized")

	// ErrNoDecodeResult is returned by an engine for a single failed decode
	// attempt (wrong region, no pattern found)
	ErrNoDecodeResult = errors.New("no decodable pattern found")

	// ErrEngineStopped is returned when a decode is submitted to an engine
	// that has already been stopped
	ErrEngineStopped = errors.New("decode engine stopped")

	// ErrRegistryFailure is returned when a registry request fails at the
	// transport or protocol level
	ErrRegistryFailure = errors.New("registry request failed")

	// ErrCacheMiss is returned when a record is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")
)
