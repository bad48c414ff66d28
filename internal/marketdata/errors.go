package marketdata

import "errors"

// ErrDataUnavailable means the symbol is unknown, delisted, or the
// upstream source returned zero rows. Terminal for this symbol.
var ErrDataUnavailable = errors.New("market data unavailable")

// ErrTransientFetch means the upstream source was reachable but failed
// in a retryable way (timeout, rate limit, server error). The pipeline
// does not retry; the caller decides.
var ErrTransientFetch = errors.New("transient fetch failure")
