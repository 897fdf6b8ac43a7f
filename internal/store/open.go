package store

import (
	"errors"
	"strings"
)

// Open returns a RemoteStore for an http(s) URL and a SQLiteStore for any
// other target, which is taken as a database path.
func Open(target string) (Store, error) {
	if target == "" {
		return nil, errors.New("open store: empty target")
	}
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return NewRemote(target), nil
	}
	return New(target)
}
