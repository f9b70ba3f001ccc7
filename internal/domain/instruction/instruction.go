// Package instruction decodes the escrow program's instruction data.
//
// Every instruction is a one byte tag followed by a little-endian u64 amount.
package instruction

import (
	"encoding/binary"
	"fmt"

	"github.com/blackcloro/escrow-program/internal/programerr"
)

const (
	TagInitEscrow byte = 0
	TagExchange   byte = 1
)

// DataLen is the exact length of encoded instruction data.
const DataLen = 1 + 8

type Instruction interface {
	Name() string
	tag() byte
	amount() uint64
}

// InitEscrow opens an escrow. Amount is what the initializer expects to receive.
type InitEscrow struct {
	Amount uint64
}

func (InitEscrow) Name() string     { return "InitEscrow" }
func (InitEscrow) tag() byte        { return TagInitEscrow }
func (i InitEscrow) amount() uint64 { return i.Amount }

// Exchange settles an escrow. Amount is what the taker expects to receive.
type Exchange struct {
	Amount uint64
}

func (Exchange) Name() string     { return "Exchange" }
func (Exchange) tag() byte        { return TagExchange }
func (e Exchange) amount() uint64 { return e.Amount }

// Unpack decodes instruction data. Any malformed input yields
// programerr.InvalidInstruction.
func Unpack(data []byte) (Instruction, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty instruction data: %w", programerr.InvalidInstruction)
	}
	if len(data) != DataLen {
		return nil, fmt.Errorf("instruction data is %d bytes, want %d: %w", len(data), DataLen, programerr.InvalidInstruction)
	}

	amount := binary.LittleEndian.Uint64(data[1:])
	switch data[0] {
	case TagInitEscrow:
		return InitEscrow{Amount: amount}, nil
	case TagExchange:
		return Exchange{Amount: amount}, nil
	default:
		return nil, fmt.Errorf("unknown instruction tag %d: %w", data[0], programerr.InvalidInstruction)
	}
}

func Pack(ix Instruction) []byte {
	buf := make([]byte, DataLen)
	buf[0] = ix.tag()
	binary.LittleEndian.PutUint64(buf[1:], ix.amount())
	return buf
}
