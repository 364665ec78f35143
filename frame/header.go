package frame

import (
	"slices"

	"github.com/samber/lo"
)

// HeaderKey names a header the engine sets or reads itself.
type HeaderKey string

const (
	HeaderID            HeaderKey = "id"
	HeaderHost          HeaderKey = "host"
	HeaderReceipt       HeaderKey = "receipt"
	HeaderSession       HeaderKey = "session"
	HeaderReceiptID     HeaderKey = "receipt-id"
	HeaderMessageID     HeaderKey = "message-id"
	HeaderDestination   HeaderKey = "destination"
	HeaderContentLength HeaderKey = "content-length"
	HeaderContentType   HeaderKey = "content-type"
	HeaderAck           HeaderKey = "ack"
	HeaderTransaction   HeaderKey = "transaction"
	HeaderSubscription  HeaderKey = "subscription"
	HeaderDisconnected  HeaderKey = "disconnected"
	HeaderHeartBeat     HeaderKey = "heart-beat"
	HeaderAcceptVersion HeaderKey = "accept-version"
	HeaderMessage       HeaderKey = "message"
	HeaderVersion       HeaderKey = "version"
	HeaderServer        HeaderKey = "server"
)

const (
	ContentTypeText = "text/plain"
	ContentTypeJSON = "application/json;charset=UTF-8"
)

// Header is an ordered set of unique header keys. The zero value is empty and
// ready to use.
type Header struct {
	keys   []string
	values map[string]string
}

// Set stores value under key. A new key is appended; an existing key keeps its
// position.
func (h *Header) Set(key, value string) {
	if h.values == nil {
		h.values = make(map[string]string)
	}
	if _, ok := h.values[key]; !ok {
		h.keys = append(h.keys, key)
	}
	h.values[key] = value
}

// setIfAbsent is used by the decoder: the first occurrence of a repeated
// header wins.
func (h *Header) setIfAbsent(key, value string) {
	if _, ok := h.values[key]; ok {
		return
	}
	h.Set(key, value)
}

func (h Header) Get(key string) (string, bool) {
	v, ok := h.values[key]
	return v, ok
}

// Value returns the header for a well known key, or "" when absent.
func (h Header) Value(key HeaderKey) string {
	return h.values[string(key)]
}

func (h Header) Has(key HeaderKey) bool {
	_, ok := h.values[string(key)]
	return ok
}

func (h *Header) Del(key string) {
	if _, ok := h.values[key]; !ok {
		return
	}
	delete(h.values, key)
	h.keys = slices.DeleteFunc(h.keys, func(k string) bool { return k == key })
}

func (h Header) Len() int { return len(h.keys) }

// Keys returns the keys in insertion order.
func (h Header) Keys() []string { return slices.Clone(h.keys) }

// Map returns a copy of the headers as a plain map.
func (h Header) Map() map[string]string {
	out := make(map[string]string, len(h.keys))
	for k, v := range h.values {
		out[k] = v
	}
	return out
}

// Clone returns an independent copy.
func (h Header) Clone() Header {
	return Header{keys: slices.Clone(h.keys), values: h.Map()}
}

// HeaderBuilder accumulates typed common headers plus caller supplied extras.
type HeaderBuilder struct {
	header Header
}

func NewHeaderBuilder() *HeaderBuilder {
	return &HeaderBuilder{}
}

func (b *HeaderBuilder) Add(key HeaderKey, value string) *HeaderBuilder {
	b.header.Set(string(key), value)
	return b
}

// AddIf adds the header only when value is non-empty.
func (b *HeaderBuilder) AddIf(key HeaderKey, value string) *HeaderBuilder {
	if value == "" {
		return b
	}
	return b.Add(key, value)
}

// Merge copies extra headers in sorted key order, overriding existing values.
func (b *HeaderBuilder) Merge(extra map[string]string) *HeaderBuilder {
	keys := lo.Keys(extra)
	slices.Sort(keys)
	for _, k := range keys {
		b.header.Set(k, extra[k])
	}
	return b
}

func (b *HeaderBuilder) Build() Header {
	return b.header.Clone()
}
