package utils

import (
	"math/rand"
	"os"
	"time"

	"github.com/Luismorlan/conduit/utils/dotenv"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

var random = rand.New(rand.NewSource(time.Now().UnixNano()))

// RandomAlphabetString returns n random lower case letters.
func RandomAlphabetString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[random.Intn(len(alphabet))]
	}
	return string(b)
}

func IsProdEnv() bool {
	return os.Getenv(dotenv.EnvKey) == dotenv.ProdEnv
}
