package async

import "errors"

// ErrNoFutures is returned by WaitAll when called without futures.
var ErrNoFutures = errors.New("async.no_futures")
