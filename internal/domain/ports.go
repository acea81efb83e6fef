package domain

import (
	"context"
	"errors"
)

var (
	ErrUpstream      = errors.New("dataset: upstream error")
	ErrMissingColumn = errors.New("dataset: missing column")
	ErrInvalidMode   = errors.New("initiative mode must be All, Yes or No")
)

type DatasetSource interface {
	Fetch(ctx context.Context) (RawCSV, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
