package domain

import "errors"

var (
	// ErrSourceUnavailable reports that an upstream was unreachable or
	// answered with something other than a usable payload.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrRateParse reports that a payload was fetched but the expected
	// numeric rate could not be extracted from it.
	ErrRateParse = errors.New("rate parse failed")
	// ErrUnsupportedPair reports a currency outside the supported set.
	ErrUnsupportedPair = errors.New("unsupported pair")
)
