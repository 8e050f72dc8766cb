package utils

import (
	"math/rand"
	"os"

	"github.com/plaza-social/plaza/utils/dotenv"
)

// Stable API error codes returned in JSON error bodies alongside the
// HTTP status. Clients key retry/alert behavior on these, not on the
// human readable message.
const (
	ErrorTokenAuthFail   = 1001
	ErrorInvalidArgument = 1002
	ErrorNotFound        = 1003
	ErrorPermissionDeny  = 1004
	ErrorConflict        = 1005
	ErrorInternal        = 1006
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// ContainsString returns true iff the provided string slice hay contains string
// needle.
func ContainsString(hay []string, needle string) bool {
	for _, str := range hay {
		if str == needle {
			return true
		}
	}
	return false
}

// Min returns the smaller of a and b.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// RandomAlphabetString generates a random lowercase string of length n.
func RandomAlphabetString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(b)
}

// IsProdEnv returns true iff the current process runs with production
// environment config.
func IsProdEnv() bool {
	return os.Getenv("PLAZA_ENV") == dotenv.ProdEnv
}
