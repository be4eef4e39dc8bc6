package mapper

import (
	"fmt"
	"io"
	"sort"

	"github.com/sem42198/mongo-migrator/internal/value"
)

// WritePreview renders Preview's output per spec.md §6.5: a single
// document keyed by root collection name, each value a list of the
// materialized rows with children embedded, in a structured key-value
// text format with optional indentation. Unknown value kinds fall back
// to their Value.String() textual representation.
func WritePreview(w io.Writer, results map[string][]value.Document) error {
	tables := make([]string, 0, len(results))
	for t := range results {
		tables = append(tables, t)
	}
	sort.Strings(tables)

	for _, table := range tables {
		if _, err := fmt.Fprintf(w, "%s:\n", table); err != nil {
			return err
		}
		for i, row := range results[table] {
			if _, err := fmt.Fprintf(w, "  - # %d\n", i); err != nil {
				return err
			}
			if err := writeDocument(w, row, 4); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeDocument(w io.Writer, doc value.Document, indent int) error {
	pad := spaces(indent)
	for _, k := range doc.Keys() {
		v, _ := doc.Get(k)
		if err := writeField(w, pad, k, v, indent); err != nil {
			return err
		}
	}
	return nil
}

func writeField(w io.Writer, pad, key string, v value.Value, indent int) error {
	switch v.Kind() {
	case value.KindDocument:
		if _, err := fmt.Fprintf(w, "%s%s:\n", pad, key); err != nil {
			return err
		}
		doc, _ := v.Document()
		return writeDocument(w, doc, indent+2)
	case value.KindList:
		if _, err := fmt.Fprintf(w, "%s%s:\n", pad, key); err != nil {
			return err
		}
		list, _ := v.List()
		for _, item := range list {
			if item.Kind() == value.KindDocument {
				if _, err := fmt.Fprintf(w, "%s- \n", spaces(indent+2)); err != nil {
					return err
				}
				doc, _ := item.Document()
				if err := writeDocument(w, doc, indent+4); err != nil {
					return err
				}
			} else {
				if _, err := fmt.Fprintf(w, "%s- %s\n", spaces(indent+2), item.String()); err != nil {
					return err
				}
			}
		}
		return nil
	default:
		_, err := fmt.Fprintf(w, "%s%s: %s\n", pad, key, v.String())
		return err
	}
}

func spaces(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
