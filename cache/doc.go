// Package cache provides a keyed, single-flight cache for long-lived resources.
//
// Keyed maps an opaque string key to a lazily constructed value. Concurrent
// requests for the same key share one construction; failed constructions are
// never retained, so the next request builds again. Values live until the
// cache is closed, at which point every value implementing Closer is released.
//
// The package also provides helpers for deriving deterministic keys
// (JoinKey, Fingerprint) that never embed secret material verbatim.
package cache
