package account

import (
	"math"
	"math/bits"
)

// AccountStorageOverhead is charged on top of the data length of every account.
const AccountStorageOverhead = 128

// Rent holds the parameters that decide whether an account is exempt from rent
// collection.
type Rent struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  float64
}

var DefaultRent = Rent{
	LamportsPerByteYear: 3480,
	ExemptionThreshold:  2.0,
}

// MinimumBalance is the lowest balance at which an account with dataLen bytes of
// data is rent exempt. Results past the u64 range saturate at math.MaxUint64.
func (r Rent) MinimumBalance(dataLen int) uint64 {
	hi, lo := bits.Mul64(uint64(AccountStorageOverhead+dataLen), r.LamportsPerByteYear)
	if hi != 0 {
		return math.MaxUint64
	}
	// 2^64 is exact in float64; anything at or above it does not fit a uint64.
	balance := float64(lo) * r.ExemptionThreshold
	if balance >= 1<<64 {
		return math.MaxUint64
	}
	return uint64(balance)
}

func (r Rent) IsExempt(lamports uint64, dataLen int) bool {
	return lamports >= r.MinimumBalance(dataLen)
}
