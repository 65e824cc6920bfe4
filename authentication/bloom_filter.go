package authentication

import (
	"hash/fnv"
	"math"
	"strings"
	"sync"
)

// EmailFilter is a bloom filter over registered email addresses. It answers
// "definitely not registered" without touching the database.
type EmailFilter struct {
	mu        sync.RWMutex
	bits      []bool
	numBits   uint
	numHashes uint
}

func NewEmailFilter(expectedEmails uint, falsePositiveRate float64) *EmailFilter {
	if expectedEmails == 0 {
		expectedEmails = 1
	}

	m := optimalBitCount(expectedEmails, falsePositiveRate)
	k := optimalHashCount(m, expectedEmails)

	return &EmailFilter{
		bits:      make([]bool, m),
		numBits:   m,
		numHashes: k,
	}
}

func optimalBitCount(n uint, p float64) uint {
	m := -float64(n) * math.Log(p) / (math.Log(2) * math.Log(2))

	return uint(math.Ceil(m))
}

func optimalHashCount(m, n uint) uint {
	k := uint(math.Round(float64(m) / float64(n) * math.Log(2)))
	if k < 1 {
		return 1
	}

	return k
}

// NormalizeEmail lowercases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (f *EmailFilter) positions(email string) []uint {
	key := []byte(NormalizeEmail(email))

	h1 := fnv.New32a()
	_, _ = h1.Write(key)
	v1 := uint(h1.Sum32())

	// odd step so every bit stays reachable
	h2 := fnv.New32()
	_, _ = h2.Write(key)
	v2 := uint(h2.Sum32()) | 1

	positions := make([]uint, f.numHashes)
	for i := range f.numHashes {
		positions[i] = (v1 + i*v2) % f.numBits
	}

	return positions
}

func (f *EmailFilter) Add(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, pos := range f.positions(email) {
		f.bits[pos] = true
	}
}

// MayContain returns false only when email was never added.
func (f *EmailFilter) MayContain(email string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, pos := range f.positions(email) {
		if !f.bits[pos] {
			return false
		}
	}

	return true
}
