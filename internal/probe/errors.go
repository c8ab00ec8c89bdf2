package probe

import "errors"

// ErrNoActiveServer is returned by Locator.Find when none of the candidate
// targets answered.
var ErrNoActiveServer = errors.New("no reachable development server found")
