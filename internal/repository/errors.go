package repository

import "errors"

// ErrNotFound indica que la fila pedida no existe.
var ErrNotFound = errors.New("repository: not found")
