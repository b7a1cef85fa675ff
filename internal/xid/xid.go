// Package xid generates the record ids used across the back office.
package xid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// New returns an id like "sale-20260901T101530-a3f09b12": a type prefix, a
// second-resolution UTC stamp for eyeballing records in logs and SQL, and a
// random suffix for uniqueness. Falls back to nanosecond time alone if the
// random source fails.
func New(prefix string) string {
	stamp := time.Now().UTC().Format("20060102T150405")
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
	}
	return fmt.Sprintf("%s-%s-%s", prefix, stamp, hex.EncodeToString(buf))
}
