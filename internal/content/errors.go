package content

import "errors"

var errNoClient = errors.New("no text generation client configured")
