package rankings

import "errors"

var ErrInvalidDate = errors.New("date must be formatted as YYYY-MM-DD")
