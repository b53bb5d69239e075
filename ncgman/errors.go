package ncgman

import (
	"errors"
	"fmt"
)

var (
	ErrBlockNotFound   = errors.New("block not found")
	ErrInvalidHistory  = errors.New("invalid transfer history")
	ErrEmptyTxId       = errors.New("headless returned an empty tx id")
	ErrSetPrivateKey   = errors.New("failed to set private key")
	ErrInvalidEndpoint = errors.New("invalid endpoint")
)

func ErrBlockNotFoundAt(index uint64) error {
	return fmt.Errorf("%w: index=%d", ErrBlockNotFound, index)
}
