package serialization

import (
	"fmt"

	"jsctx/pkg/lexer"

	"github.com/funvibe/funbit/pkg/funbit"
)

const (
	FormatFunbit = "funbit"

	snapshotMagic   = 0x4A53544B // "JSTK"
	snapshotVersion = 1

	// kind(16) channel(8) index line column start text_len(32 each), empty text
	minTokenBytes = 23
)

// FunbitSerializer writes snapshots as a packed bitstring:
//
//	magic:32 version:8 count:32 source_len:16 source/binary
//	per token: kind:16 channel:8 index:32 line:32 column:32 start:32 text_len:32 text/binary
type FunbitSerializer struct{}

func NewFunbitSerializer() *FunbitSerializer {
	return &FunbitSerializer{}
}

func (fs *FunbitSerializer) GetName() string {
	return FormatFunbit
}

func (fs *FunbitSerializer) GetVersion() string {
	return fmt.Sprintf("%d", snapshotVersion)
}

// Serialize packs the snapshot
func (fs *FunbitSerializer) Serialize(snapshot *Snapshot) ([]byte, error) {
	if snapshot == nil {
		return nil, NewSerializationError(FormatFunbit, "serialize", "snapshot is nil")
	}
	if len(snapshot.Source) > 0xFFFF {
		return nil, NewSerializationError(FormatFunbit, "serialize", "source name too long").
			WithContext("length", len(snapshot.Source))
	}

	builder := funbit.NewBuilder()
	funbit.AddInteger(builder, snapshotMagic, funbit.WithSize(32))
	funbit.AddInteger(builder, snapshotVersion, funbit.WithSize(8))
	funbit.AddInteger(builder, len(snapshot.Tokens), funbit.WithSize(32))
	funbit.AddInteger(builder, len(snapshot.Source), funbit.WithSize(16))
	funbit.AddBinary(builder, []byte(snapshot.Source))

	for _, tok := range snapshot.Tokens {
		if tok.Index < 0 {
			return nil, NewSerializationError(FormatFunbit, "serialize", "token is not part of a stream").
				WithContext("token", tok.String())
		}
		funbit.AddInteger(builder, int(tok.Type), funbit.WithSize(16))
		funbit.AddInteger(builder, int(tok.Channel), funbit.WithSize(8))
		funbit.AddInteger(builder, tok.Index, funbit.WithSize(32))
		funbit.AddInteger(builder, tok.Line, funbit.WithSize(32))
		funbit.AddInteger(builder, tok.Column, funbit.WithSize(32))
		funbit.AddInteger(builder, tok.Start, funbit.WithSize(32))
		funbit.AddInteger(builder, len(tok.Text), funbit.WithSize(32))
		funbit.AddBinary(builder, []byte(tok.Text))
	}

	bs, err := funbit.Build(builder)
	if err != nil {
		return nil, NewSerializationError(FormatFunbit, "serialize", "build failed").Wrap(err)
	}
	return bs.ToBytes(), nil
}

// Deserialize unpacks a snapshot produced by Serialize
func (fs *FunbitSerializer) Deserialize(data []byte) (*Snapshot, error) {
	if len(data) == 0 {
		return nil, NewSerializationError(FormatFunbit, "deserialize", "data is empty")
	}

	var magic, version, count, sourceLen int
	var rest []byte

	header := funbit.NewMatcher()
	funbit.Integer(header, &magic, funbit.WithSize(32))
	funbit.Integer(header, &version, funbit.WithSize(8))
	funbit.Integer(header, &count, funbit.WithSize(32))
	funbit.Integer(header, &sourceLen, funbit.WithSize(16))
	funbit.RestBinary(header, &rest)

	if _, err := funbit.Match(header, funbit.NewBitStringFromBytes(data)); err != nil {
		return nil, NewSerializationError(FormatFunbit, "deserialize", "malformed header").Wrap(err)
	}
	if magic != snapshotMagic {
		return nil, NewSerializationError(FormatFunbit, "deserialize", "not a token snapshot").
			WithContext("magic", magic)
	}
	if version != snapshotVersion {
		return nil, NewSerializationError(FormatFunbit, "deserialize",
			fmt.Sprintf("version %d not supported", version))
	}
	if len(rest) < sourceLen {
		return nil, NewSerializationError(FormatFunbit, "deserialize", "truncated source name")
	}

	source := string(rest[:sourceLen])
	rest = rest[sourceLen:]
	// count is untrusted; it must fit the bytes that are actually there
	if count > len(rest)/minTokenBytes {
		return nil, NewSerializationError(FormatFunbit, "deserialize", "token count exceeds data").
			WithContext("count", count).WithContext("bytes", len(rest))
	}

	snapshot := &Snapshot{
		Source: source,
		Tokens: make([]lexer.Token, 0, count),
	}

	for i := 0; i < count; i++ {
		tok, remaining, err := decodeToken(rest)
		if err != nil {
			return nil, err.WithContext("token", i)
		}
		snapshot.Tokens = append(snapshot.Tokens, tok)
		rest = remaining
	}

	if len(rest) != 0 {
		return nil, NewSerializationError(FormatFunbit, "deserialize", "trailing data").
			WithContext("bytes", len(rest))
	}
	return snapshot, nil
}

func decodeToken(data []byte) (lexer.Token, []byte, *SerializationError) {
	var kind, channel, index, line, column, start, textLen int
	var rest []byte

	m := funbit.NewMatcher()
	funbit.Integer(m, &kind, funbit.WithSize(16))
	funbit.Integer(m, &channel, funbit.WithSize(8))
	funbit.Integer(m, &index, funbit.WithSize(32))
	funbit.Integer(m, &line, funbit.WithSize(32))
	funbit.Integer(m, &column, funbit.WithSize(32))
	funbit.Integer(m, &start, funbit.WithSize(32))
	funbit.Integer(m, &textLen, funbit.WithSize(32))
	funbit.RestBinary(m, &rest)

	if _, err := funbit.Match(m, funbit.NewBitStringFromBytes(data)); err != nil {
		return lexer.Token{}, nil, NewSerializationError(FormatFunbit, "deserialize", "truncated token").Wrap(err)
	}
	if len(rest) < textLen {
		return lexer.Token{}, nil, NewSerializationError(FormatFunbit, "deserialize", "truncated token text")
	}

	text := string(rest[:textLen])
	return lexer.Token{
		Type:    lexer.TokenType(kind),
		Text:    text,
		Channel: lexer.Channel(channel),
		Index:   index,
		Line:    line,
		Column:  column,
		Start:   start,
		Stop:    start + len(text),
	}, rest[textLen:], nil
}

// HexDump renders serialized bytes for terminal inspection
func HexDump(data []byte) string {
	return funbit.ToHexDump(funbit.NewBitStringFromBytes(data))
}
