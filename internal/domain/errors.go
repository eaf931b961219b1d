package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrAccessDenied     = errors.New("access denied")
	ErrUnknownPartition = errors.New("unknown partition")
	ErrCatalogNotLoaded = errors.New("catalog not loaded")
)
