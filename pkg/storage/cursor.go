package storage

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidCursor is returned by ParseCursor for tokens it did not issue.
var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor points just past the last row of a page. Rows are ordered by
// (At DESC, ID DESC) so ties on the timestamp are broken by the id.
type Cursor struct {
	At time.Time
	ID uuid.UUID
}

// IsZero reports whether c asks for the first page.
func (c Cursor) IsZero() bool {
	return c.At.IsZero() && c.ID == uuid.Nil
}

// String encodes c as an opaque url-safe token.
func (c Cursor) String() string {
	if c.IsZero() {
		return ""
	}
	raw := c.At.UTC().Format(time.RFC3339Nano) + "|" + c.ID.String()

	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// ParseCursor decodes a token produced by Cursor.String. The empty token is
// the zero cursor.
func ParseCursor(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: %w", ErrInvalidCursor, err)
	}
	at, id, ok := strings.Cut(string(raw), "|")
	if !ok {
		return Cursor{}, ErrInvalidCursor
	}

	var c Cursor
	if c.At, err = time.Parse(time.RFC3339Nano, at); err != nil {
		return Cursor{}, fmt.Errorf("%w: %w", ErrInvalidCursor, err)
	}
	if c.ID, err = uuid.Parse(id); err != nil {
		return Cursor{}, fmt.Errorf("%w: %w", ErrInvalidCursor, err)
	}

	return c, nil
}
