package chain

import "errors"

// ErrIndexUnavailable means no corpus was ever indexed or initialization
// failed fatally. The failure is memoized: requests get this error without
// re-running the expensive initialization; a process restart retries.
var ErrIndexUnavailable = errors.New("retrieval index unavailable")
