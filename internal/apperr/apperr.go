// Package apperr defines the user-facing error kinds shared by the
// application services. The HTTP layer maps each kind to a status code;
// everything else surfaces as an internal error.
package apperr

// Validation is a rejected request: a missing or malformed field, or content
// turned down by moderation. Maps to 400.
type Validation string

func (e Validation) Error() string { return string(e) }

// Unauthorized is a failed credential or permission check. Maps to 401.
type Unauthorized string

func (e Unauthorized) Error() string { return string(e) }

// NotFound is a missing resource. Maps to 404.
type NotFound string

func (e NotFound) Error() string { return string(e) }
