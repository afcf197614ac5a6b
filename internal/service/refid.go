package service

import (
    "crypto/rand"
    "encoding/base32"

    "github.com/pizzas505/table-reservation/internal/model"
)

// refEncoding renders reference tokens in the RFC 4648 base32 alphabet
// (A-Z, 2-7) without padding: unambiguous over the phone and safe in
// URLs.
var refEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewReferenceID returns a random 80-bit reference token, 16 characters
// long.  Randomness this wide makes collisions a retry path rather than
// a realistic event; the store's unique constraint backstops it.
func NewReferenceID() (model.ReferenceID, error) {
    buf := make([]byte, 10) // 10 bytes -> 16 base32 chars
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return model.ReferenceID(refEncoding.EncodeToString(buf)), nil
}
