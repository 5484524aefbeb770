package domain

import "github.com/google/uuid"

// String returns the canonical uuid form of the id.
func (id PostID) String() string { return uuid.UUID(id).String() }

// MarshalText implements encoding.TextMarshaler.
func (id PostID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *PostID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

// String returns the canonical uuid form of the id.
func (id LeadID) String() string { return uuid.UUID(id).String() }

// MarshalText implements encoding.TextMarshaler.
func (id LeadID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *LeadID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

// String returns the canonical uuid form of the id.
func (id UserID) String() string { return uuid.UUID(id).String() }

// MarshalText implements encoding.TextMarshaler.
func (id UserID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *UserID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
