// Package frame implements the STOMP frame model and its text wire codec.
//
// Binary bodies travel as standard base64 text instead of raw bytes with a
// content-length header. Decoding classifies any non-empty body that is valid
// base64 as binary, so a text body that happens to be valid base64 comes back
// as binary.
package frame

import (
	"encoding/base64"
	"strings"
)

const nul = "\x00"

type BodyKind uint8

const (
	BodyEmpty BodyKind = iota
	BodyText
	BodyBinary
)

func (k BodyKind) String() string {
	switch k {
	case BodyText:
		return "text"
	case BodyBinary:
		return "binary"
	default:
		return "empty"
	}
}

// Body is empty, text or binary.
type Body struct {
	kind BodyKind
	text string
	data []byte
}

func TextBody(s string) Body { return Body{kind: BodyText, text: s} }

func BinaryBody(b []byte) Body {
	return Body{kind: BodyBinary, data: append([]byte(nil), b...)}
}

func (b Body) Kind() BodyKind { return b.kind }

func (b Body) Text() string { return b.text }

func (b Body) Bytes() []byte { return append([]byte(nil), b.data...) }

// IsEmpty reports whether nothing would be written between the header block
// and the terminating NUL.
func (b Body) IsEmpty() bool {
	switch b.kind {
	case BodyText:
		return b.text == ""
	case BodyBinary:
		return len(b.data) == 0
	default:
		return true
	}
}

// Frame is one STOMP protocol unit. It is not modified after construction.
type Frame[C Command] struct {
	command C
	header  Header
	body    Body
}

// New builds a frame without a body.
func New[C Command](cmd C, h Header) *Frame[C] {
	return &Frame[C]{command: cmd, header: h.Clone()}
}

// NewText builds a frame with a text body, defaulting content-type to
// text/plain.
func NewText[C Command](cmd C, h Header, text string) *Frame[C] {
	f := New(cmd, h)
	f.body = TextBody(text)
	if !f.header.Has(HeaderContentType) {
		f.header.Set(string(HeaderContentType), ContentTypeText)
	}
	return f
}

// NewBinary builds a frame whose body is written as base64.
func NewBinary[C Command](cmd C, h Header, data []byte) *Frame[C] {
	f := New(cmd, h)
	f.body = BinaryBody(data)
	return f
}

func (f *Frame[C]) Command() C { return f.command }

// Header returns a copy of the frame headers.
func (f *Frame[C]) Header() Header { return f.header.Clone() }

func (f *Frame[C]) Get(key HeaderKey) string { return f.header.Value(key) }

func (f *Frame[C]) Lookup(key HeaderKey) (string, bool) { return f.header.Get(string(key)) }

func (f *Frame[C]) Body() Body { return f.body }

// Encode serializes the frame to its wire text.
func (f *Frame[C]) Encode() string {
	var sb strings.Builder
	sb.WriteString(f.command.String())
	sb.WriteByte('\n')
	for _, k := range f.header.keys {
		sb.WriteString(k)
		sb.WriteByte(':')
		sb.WriteString(f.header.values[k])
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	switch f.body.kind {
	case BodyText:
		sb.WriteString(f.body.text)
	case BodyBinary:
		sb.WriteString(base64.StdEncoding.EncodeToString(f.body.data))
	}
	sb.WriteString(nul)
	return sb.String()
}

// Decode parses a server frame.
func Decode(text string) (*Frame[ResponseCommand], error) {
	return decode(text, ParseResponseCommand)
}

// DecodeRequest parses a client frame.
func DecodeRequest(text string) (*Frame[RequestCommand], error) {
	return decode(text, ParseRequestCommand)
}

func decode[C Command](text string, parse func(string) (C, bool)) (*Frame[C], error) {
	if strings.Trim(text, "\r\n"+nul) == "" {
		return nil, newDecodeError(ErrEmptyFrame.Code, ErrEmptyFrame.Message, "")
	}
	lines := strings.Split(text, "\n")
	if lines[0] == "" {
		lines = lines[1:]
	}

	name := strings.TrimSuffix(lines[0], "\r")
	cmd, ok := parse(name)
	if !ok {
		return nil, newDecodeError(ErrInvalidCommand.Code, ErrInvalidCommand.Message, name)
	}
	lines = lines[1:]

	f := &Frame[C]{command: cmd}
	for len(lines) > 0 && lines[0] != "" {
		key, value, found := strings.Cut(lines[0], ":")
		if !found {
			break
		}
		f.header.setIfAbsent(strings.TrimSpace(key), strings.TrimSpace(value))
		lines = lines[1:]
	}
	if len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}

	// Only the terminating NUL and any heart-beat EOLs after it are dropped.
	body := strings.Join(lines, "\n")
	if trimmed := strings.TrimRight(body, "\r\n"); strings.HasSuffix(trimmed, nul) {
		body = strings.TrimSuffix(trimmed, nul)
	}
	switch {
	case body == "":
		f.body = Body{}
	case isBase64(body):
		data, _ := base64.StdEncoding.DecodeString(body)
		f.body = Body{kind: BodyBinary, data: data}
	default:
		f.body = TextBody(body)
	}
	return f, nil
}

// isBase64 is strict: the std decoder silently skips CR and LF, which would
// turn multi-line text into binary.
func isBase64(s string) bool {
	if len(s)%4 != 0 || strings.ContainsAny(s, "\r\n \t") {
		return false
	}
	_, err := base64.StdEncoding.DecodeString(s)
	return err == nil
}
