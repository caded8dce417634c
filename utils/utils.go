package utils

import (
	"crypto/md5"
	"encoding/hex"
	"math/rand"
	"os"
	"path"
	"strings"

	"github.com/photolog-app/photolog/utils/dotenv"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// ContainsString returns true iff the provided string slice hay contains
// string needle.
func ContainsString(hay []string, needle string) bool {
	for _, str := range hay {
		if str == needle {
			return true
		}
	}
	return false
}

func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func RandomAlphabetString(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(b)
}

func TextToMd5Hash(text string) (string, error) {
	h := md5.New()
	if _, err := h.Write([]byte(text)); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// GetUrlExtNameWithDot extracts the file extension (including the
// leading dot) from a url or file name, dropping any query string.
func GetUrlExtNameWithDot(url string) string {
	ext := path.Ext(url)
	if idx := strings.Index(ext, "?"); idx != -1 {
		ext = ext[:idx]
	}
	return ext
}

func IsProdEnv() bool {
	return os.Getenv("PHOTOLOG_ENV") == dotenv.ProdEnv
}
