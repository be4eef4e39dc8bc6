// Package value defines the dynamic row shape threaded through catalog
// reads, child-row assembly, and document persistence. Source rows are
// heterogeneous key->value maps; Kind is a small tagged variant so callers
// can switch on the concrete shape without type-asserting interface{}.
package value

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Kind tags the concrete shape carried by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindText
	KindDecimal
	KindDate
	KindDateTime
	KindBlob
	KindDocument
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindText:
		return "text"
	case KindDecimal:
		return "decimal"
	case KindDate:
		return "date"
	case KindDateTime:
		return "datetime"
	case KindBlob:
		return "blob"
	case KindDocument:
		return "document"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is a polymorphic field value as read from the relational source
// or assembled for the target document. Exactly one of the concrete
// accessor fields is meaningful, selected by Kind.
type Value struct {
	kind Kind

	i    int64
	s    string
	dec  decimal.Decimal
	t    time.Time
	blob []byte
	doc  Document
	list []Value
}

// Document is an ordered key->value row. A plain map would lose column
// order on re-marshal, so Document keeps field order explicit.
type Document struct {
	keys   []string
	fields map[string]Value
}

// NewDocument creates an empty document.
func NewDocument() Document {
	return Document{fields: make(map[string]Value)}
}

// Set inserts or overwrites a field, preserving first-insertion order.
func (d *Document) Set(key string, v Value) {
	if d.fields == nil {
		d.fields = make(map[string]Value)
	}
	if _, ok := d.fields[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.fields[key] = v
}

// Delete removes a field if present.
func (d *Document) Delete(key string) {
	if _, ok := d.fields[key]; !ok {
		return
	}
	delete(d.fields, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

// Get returns the field value and whether it was present.
func (d Document) Get(key string) (Value, bool) {
	v, ok := d.fields[key]
	return v, ok
}

// Keys returns field names in insertion order.
func (d Document) Keys() []string {
	return append([]string(nil), d.keys...)
}

// Clone copies the field order and the top-level field map, so setting
// or deleting fields on the copy leaves d unchanged. Nested documents
// and lists inside field values are shared, not copied.
func (d Document) Clone() Document {
	cp := NewDocument()
	for _, k := range d.keys {
		cp.Set(k, d.fields[k])
	}
	return cp
}

func Null() Value                 { return Value{kind: KindNull} }
func Int(i int64) Value           { return Value{kind: KindInt, i: i} }
func Text(s string) Value         { return Value{kind: KindText, s: s} }
func Decimal(d decimal.Decimal) Value { return Value{kind: KindDecimal, dec: d} }
func Date(t time.Time) Value      { return Value{kind: KindDate, t: t} }
func DateTime(t time.Time) Value  { return Value{kind: KindDateTime, t: t} }
func Blob(b []byte) Value         { return Value{kind: KindBlob, blob: b} }
func Doc(d Document) Value        { return Value{kind: KindDocument, doc: d} }
func List(vs []Value) Value       { return Value{kind: KindList, list: vs} }

func (v Value) Kind() Kind { return v.kind }

// IsNullEquivalent reports whether v represents SQL NULL or an absent
// foreign key, the condition the mapper and ref-patcher treat as "skip".
func (v Value) IsNullEquivalent() bool {
	return v.kind == KindNull
}

func (v Value) Int() (int64, bool)             { return v.i, v.kind == KindInt }
func (v Value) Text() (string, bool)           { return v.s, v.kind == KindText }
func (v Value) DecimalValue() (decimal.Decimal, bool) { return v.dec, v.kind == KindDecimal }
func (v Value) Time() (time.Time, bool) {
	return v.t, v.kind == KindDate || v.kind == KindDateTime
}
func (v Value) BlobBytes() ([]byte, bool) { return v.blob, v.kind == KindBlob }
func (v Value) Document() (Document, bool) { return v.doc, v.kind == KindDocument }
func (v Value) List() ([]Value, bool)      { return v.list, v.kind == KindList }

// String renders v for logging and preview fallback; unknown/composite
// kinds fall back to their Go-ish textual representation per §6.5.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "<nil>"
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindText:
		return v.s
	case KindDecimal:
		return v.dec.String()
	case KindDate:
		return v.t.Format("2006-01-02")
	case KindDateTime:
		return v.t.Format(time.RFC3339)
	case KindBlob:
		return fmt.Sprintf("<%d bytes>", len(v.blob))
	case KindDocument:
		return fmt.Sprintf("<document %d fields>", len(v.doc.keys))
	case KindList:
		return fmt.Sprintf("<list %d items>", len(v.list))
	default:
		return "<unknown>"
	}
}

// AsKey converts a scalar value to a comparable Go value usable as a map
// key, for FK-value indexing in reference patching (§4.8 Phase 2).
func (v Value) AsKey() (any, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindText:
		return v.s, true
	case KindDecimal:
		return v.dec.String(), true
	case KindDate, KindDateTime:
		return v.t.UnixNano(), true
	default:
		return nil, false
	}
}
