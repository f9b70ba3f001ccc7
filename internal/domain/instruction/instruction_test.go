package instruction

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackcloro/escrow-program/internal/programerr"
)

func TestUnpack(t *testing.T) {
	testCases := []struct {
		name          string
		data          []byte
		expected      Instruction
		expectedError error
	}{
		{
			name:     "init escrow",
			data:     []byte{0, 0x2c, 0x01, 0, 0, 0, 0, 0, 0},
			expected: InitEscrow{Amount: 300},
		},
		{
			name:     "exchange",
			data:     []byte{1, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
			expected: Exchange{Amount: ^uint64(0)},
		},
		{
			name:          "empty",
			data:          nil,
			expectedError: programerr.InvalidInstruction,
		},
		{
			name:          "tag only",
			data:          []byte{0},
			expectedError: programerr.InvalidInstruction,
		},
		{
			name:          "short amount",
			data:          []byte{1, 1, 2, 3},
			expectedError: programerr.InvalidInstruction,
		},
		{
			name:          "trailing bytes",
			data:          []byte{0, 1, 0, 0, 0, 0, 0, 0, 0, 7},
			expectedError: programerr.InvalidInstruction,
		},
		{
			name:          "unknown tag",
			data:          []byte{2, 1, 0, 0, 0, 0, 0, 0, 0},
			expectedError: programerr.InvalidInstruction,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ix, err := Unpack(tc.data)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, ix)
				kind, ok := programerr.KindOf(err)
				require.True(t, ok)
				assert.Equal(t, uint32(0), kind.Code())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, ix)
		})
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t, "InitEscrow", InitEscrow{}.Name())
	assert.Equal(t, "Exchange", Exchange{}.Name())
}

func TestPackProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("packed instructions decode to themselves", prop.ForAll(
		func(exchange bool, amount uint64) bool {
			var ix Instruction = InitEscrow{Amount: amount}
			if exchange {
				ix = Exchange{Amount: amount}
			}
			back, err := Unpack(Pack(ix))
			return err == nil && back == ix
		},
		gen.Bool(), gen.UInt64(),
	))

	properties.TestingRun(t)
}
