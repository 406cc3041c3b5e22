package model

import "errors"

var ErrCacheMiss = errors.New("cache miss")
