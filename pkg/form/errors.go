package form

import "errors"

// ErrNoRenderableFields is returned when filtering leaves nothing to show.
// Hosts typically offer Advanced mode in response.
var ErrNoRenderableFields = errors.New("form: no renderable fields")
