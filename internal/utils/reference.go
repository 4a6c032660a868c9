package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const referenceCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateReference generates a unique reference for transactions,
// formatted PREFIX_YYYYMMDD_XXXXXXXX
func GenerateReference(prefix string) string {
	result := make([]byte, 8)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referenceCharset))))
		if err != nil {
			panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
		}
		result[i] = referenceCharset[n.Int64()]
	}

	timestamp := time.Now().UTC().Format("20060102")
	return fmt.Sprintf("%s_%s_%s", prefix, timestamp, string(result))
}
