// internal/protocol/protocol.go
//
// Wire codec for the two messages exchanged each round.
//
// Guess (guesser → judge), 2 octets, bit 15 is the MSB of octet 1:
//
//	[parity:1][slot4:3][slot3:3][slot2:3][slot1:3][slot0:3]
//
// Five 3-bit slots and the parity bit fill all 16 bits; there is no
// reserved space left in the message.
//
// Judgment (judge → guesser), 1 octet:
//
//	[game_lost:1][parity_error:1][white:3][red:3]
//
// The codec only packs and unpacks. Parity verification and all game
// rules live in the engine.
package protocol

import (
	"github.com/robalobadob/mastermind/internal/game"
)

const (
	// GuessSize is the length of a guess message in bytes.
	GuessSize = 2
	// JudgmentSize is the length of a judgment message in bytes.
	JudgmentSize = 1

	shiftWidth = 3
	slotMask   = 1<<shiftWidth - 1
	parityBit  = 15

	parityErrBit = 6
	gameLostBit  = 7
)

// Guess is a decoded guess message.
type Guess struct {
	Seq      game.Sequence
	Parity   uint8 // parity bit as received
	Expected uint8 // parity recomputed over Seq
}

// ParityOK reports whether the received parity matches the recomputed one.
func (g Guess) ParityOK() bool { return g.Parity == g.Expected }

// Parity folds every color's three bits into one parity bit.
func Parity(seq game.Sequence) uint8 {
	var p uint8
	for _, c := range seq {
		v := uint8(c) % game.NumColors
		p ^= v ^ (v >> 1) ^ (v >> 2)
	}
	return p & 1
}

// EncodeGuess packs seq, slot 0 lowest, with its parity bit on top.
func EncodeGuess(seq game.Sequence) [GuessSize]byte {
	var v uint16
	for i := game.Slots - 1; i >= 0; i-- {
		v <<= shiftWidth
		v |= uint16(seq[i]%game.NumColors) & slotMask
	}
	v |= uint16(Parity(seq)) << parityBit
	return [GuessSize]byte{byte(v), byte(v >> 8)}
}

// DecodeGuess unpacks a guess message and recomputes its parity.
func DecodeGuess(b [GuessSize]byte) Guess {
	v := uint16(b[1])<<8 | uint16(b[0])
	g := Guess{Parity: uint8(v>>parityBit) & 1}
	for i := 0; i < game.Slots; i++ {
		g.Seq[i] = game.Color(v & slotMask)
		v >>= shiftWidth
	}
	g.Expected = Parity(g.Seq)
	return g
}

// EncodeJudgment packs a judgment into one octet. Counts are truncated to
// their 3-bit fields.
func EncodeJudgment(j game.Judgment) byte {
	b := byte(j.Exact) & slotMask
	b |= (byte(j.Partial) & slotMask) << shiftWidth
	if j.ParityError {
		b |= 1 << parityErrBit
	}
	if j.GameLost {
		b |= 1 << gameLostBit
	}
	return b
}

// DecodeJudgment unpacks a judgment octet.
func DecodeJudgment(b byte) game.Judgment {
	return game.Judgment{
		Exact:       int(b & slotMask),
		Partial:     int((b >> shiftWidth) & slotMask),
		ParityError: b&(1<<parityErrBit) != 0,
		GameLost:    b&(1<<gameLostBit) != 0,
	}
}
