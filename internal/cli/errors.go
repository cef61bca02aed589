package cli

import (
	"errors"

	"github.com/BuzzLyutic/tasks-client/internal/store"
)

var errSignedOut = errors.New("não autenticado, use 'tasks signin'")

// friendly replaces a missing token with a hint; other errors already read well.
func friendly(err error) error {
	if errors.Is(err, store.ErrorNotFound) {
		return errSignedOut
	}
	return err
}
