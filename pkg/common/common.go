package common

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"regexp"
	"strings"

	"github.com/bwmarrin/snowflake"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
)

var snowflakeNode *snowflake.Node

func init() {
	var err error
	snowflakeNode, err = snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
}

// UUIDint64 returns a cluster-unique int64 identifier.
func UUIDint64() int64 {
	return snowflakeNode.Generate().Int64()
}

// UUID returns the string form of a snowflake identifier.
func UUID() string {
	return snowflakeNode.Generate().String()
}

func Sha256HashWithSalt(src string, salt string) string {
	h := sha256.New()
	h.Write([]byte(src + salt))
	return hex.EncodeToString(h.Sum(nil))
}

func GetSecretSalt() string {
	salt := os.Getenv("PAWSHOP_SECRET_SALT")
	if salt == "" {
		salt = "pawshop-secret"
	}
	return salt
}

var idrPrinter = message.NewPrinter(language.Indonesian)

// FormatPrice renders an amount as Indonesian rupiah without fraction digits,
// matching the storefront display convention (Rp 225.000).
func FormatPrice(amount float64) string {
	return idrPrinter.Sprintf("Rp %d", int64(amount))
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify normalizes a display name into a URL slug.
func Slugify(name string) string {
	s := slugRe.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}
