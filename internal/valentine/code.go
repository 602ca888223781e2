package valentine

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/valentine/backend/internal/repositories"
)

// codeAlphabet omits visually ambiguous characters (0/O, 1/I). Its length
// divides 256 evenly, so mapping random bytes onto it stays uniform.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeLength is the fixed length of every access code.
const CodeLength = 6

var codePattern = regexp.MustCompile(`^[A-HJ-NP-Z2-9]{6}$`)

// ValidCode reports whether s (after trimming and uppercasing) is a
// well-formed access code.
func ValidCode(s string) bool {
	return codePattern.MatchString(NormalizeCode(s))
}

// NormalizeCode uppercases and trims an externally supplied code.
func NormalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// CodeGenerator draws random codes and checks them against the record store.
type CodeGenerator struct {
	records RecordStore
}

// NewCodeGenerator constructs a generator backed by the provided store.
func NewCodeGenerator(records RecordStore) *CodeGenerator {
	return &CodeGenerator{records: records}
}

// Allocate draws codes until one has no matching record. Collisions are
// resolved optimistically: two concurrent creators may still race between
// this check and their inserts, so a duplicate-key insert must be retried
// with a fresh allocation rather than surfaced.
func (g *CodeGenerator) Allocate(ctx context.Context) (string, error) {
	for {
		code, err := randomCode()
		if err != nil {
			return "", err
		}

		_, err = g.records.FindByCode(ctx, code)
		if errors.Is(err, repositories.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("check code availability: %w", err)
		}
		// Code already taken, draw again.
	}
}

func randomCode() (string, error) {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("draw random code: %w", err)
	}

	out := make([]byte, CodeLength)
	for i, b := range buf {
		out[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(out), nil
}
