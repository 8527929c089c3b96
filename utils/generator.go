package utils

import (
	"math/rand"
	"time"
)

const referenceLength = 12
const letterBytes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var methodPrefixes = map[string]string{
	"stripe":       "STR",
	"paypal":       "PPL",
	"paystack":     "PSK",
	"mobile_money": "MMO",
}

// GeneratePaymentReference produces an opaque, method-prefixed reference for
// payment reconciliation. Uniqueness is enforced by the database's unique
// index on the reference column; twelve random characters keep collisions
// out of practical reach.
func GeneratePaymentReference(method string) string {
	prefix, ok := methodPrefixes[method]
	if !ok {
		prefix = "GEN"
	}

	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))
	b := make([]byte, referenceLength)
	for i := range b {
		b[i] = letterBytes[seededRand.Intn(len(letterBytes))]
	}
	return "EH-" + prefix + "-" + string(b)
}
