// Package codec implements the value-transform registry applied at
// insert time, per spec.md §6.4: arbitrary-precision decimal values pass
// through unchanged (the target driver performs the 128-bit decimal
// encoding), and plain dates are promoted to a datetime at midnight.
// Unrecognized kinds pass through unchanged.
package codec

import (
	"time"

	"github.com/sem42198/mongo-migrator/internal/value"
)

// Transform converts a Value's kind to the wire shape the target
// database expects, matching the original prototype's codec_options.py
// DecimalCodec/DateCodec pair.
func Transform(v value.Value) value.Value {
	switch v.Kind() {
	case value.KindDecimal:
		// Round-trips identically: the decimal is already carried at
		// arbitrary precision internally, so promotion to the target's
		// 128-bit decimal is a no-op representation change here -- the
		// target driver (out of scope for this package) performs the
		// actual BSON Decimal128 encoding.
		return v
	case value.KindDate:
		t, _ := v.Time()
		midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		return value.DateTime(midnight)
	default:
		return v
	}
}

// TransformDocument applies Transform to every field of d, recursing
// into nested documents and lists so an embedded child record's dates
// and decimals are promoted the same way a top-level field's would be.
func TransformDocument(d value.Document) value.Document {
	out := value.NewDocument()
	for _, k := range d.Keys() {
		v, _ := d.Get(k)
		out.Set(k, transformValue(v))
	}
	return out
}

func transformValue(v value.Value) value.Value {
	switch v.Kind() {
	case value.KindDocument:
		doc, _ := v.Document()
		return value.Doc(TransformDocument(doc))
	case value.KindList:
		list, _ := v.List()
		out := make([]value.Value, len(list))
		for i, item := range list {
			out[i] = transformValue(item)
		}
		return value.List(out)
	default:
		return Transform(v)
	}
}
