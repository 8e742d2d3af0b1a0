package stats

import "errors"

var (
	// ErrInvalidInput indicates malformed input such as a non-positive price
	// or an unordered/duplicated date sequence.
	ErrInvalidInput = errors.New("stats: invalid input")
	// ErrInsufficientData indicates too few observations for the requested
	// statistic or window.
	ErrInsufficientData = errors.New("stats: insufficient data")
	// ErrMisalignedSeries indicates no overlapping dates remain across
	// tickers after alignment.
	ErrMisalignedSeries = errors.New("stats: misaligned series")
)
