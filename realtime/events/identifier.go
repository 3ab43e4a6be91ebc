package events

import (
	"crypto/rand"
)

const (
	DefaultIDPrefix = "evt_"
	DefaultIDLength = 21
)

// idAlphabet holds the 58 characters used for identifier suffixes: digits
// and letters minus the visually ambiguous 0, O, I and l.
const idAlphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// GenerateID returns a fresh event identifier with the default prefix and
// length.
func GenerateID() string {
	return GenerateIDWith(DefaultIDPrefix, DefaultIDLength)
}

// GenerateIDWith returns prefix followed by random alphabet characters for
// a total of length characters. Uniqueness is probabilistic: the suffix
// carries enough entropy that collisions within a session are negligible,
// and no collision detection is performed.
func GenerateIDWith(prefix string, length int) string {
	suffix := length - len(prefix)
	if suffix <= 0 {
		return prefix
	}

	id := make([]byte, 0, length)
	id = append(id, prefix...)

	// Rejection sampling keeps the suffix uniform over the 58 characters.
	const limit = byte(len(idAlphabet) * (256 / len(idAlphabet)))
	buf := make([]byte, suffix)
	for suffix > 0 {
		if _, err := rand.Read(buf[:suffix]); err != nil {
			// crypto/rand.Read does not fail on supported platforms.
			panic(err)
		}
		for _, b := range buf[:suffix] {
			if b >= limit {
				continue
			}
			id = append(id, idAlphabet[int(b)%len(idAlphabet)])
			if len(id) == length {
				return string(id)
			}
		}
		suffix = length - len(id)
	}
	return string(id)
}
