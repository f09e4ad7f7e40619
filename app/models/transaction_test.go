package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParagraphTextValue(t *testing.T) {
	t.Run("nil map stores empty object", func(t *testing.T) {
		var p ParagraphText
		v, err := p.Value()
		require.NoError(t, err)
		assert.Equal(t, "{}", v)
	})

	t.Run("languages are serialized", func(t *testing.T) {
		p := ParagraphText{"en": "Hello", "de": "Hallo"}
		v, err := p.Value()
		require.NoError(t, err)
		assert.Contains(t, v, `"en":"Hello"`)
		assert.Contains(t, v, `"de":"Hallo"`)
	})
}

func TestParagraphTextScan(t *testing.T) {
	t.Run("from bytes", func(t *testing.T) {
		var p ParagraphText
		require.NoError(t, p.Scan([]byte(`{"en":"Hello"}`)))
		assert.Equal(t, "Hello", p["en"])
	})

	t.Run("from string", func(t *testing.T) {
		var p ParagraphText
		require.NoError(t, p.Scan(`{"fa":"Salam"}`))
		assert.Equal(t, "Salam", p["fa"])
	})

	t.Run("from nil", func(t *testing.T) {
		var p ParagraphText
		require.NoError(t, p.Scan(nil))
		assert.Empty(t, p)
	})

	t.Run("round trip", func(t *testing.T) {
		original := ParagraphText{"en": "One", "de": "Eins"}
		v, err := original.Value()
		require.NoError(t, err)

		var decoded ParagraphText
		require.NoError(t, decoded.Scan(v))
		assert.Equal(t, original, decoded)
	})
}

func TestTransactionToSelectOption(t *testing.T) {
	t.Run("uses title when present", func(t *testing.T) {
		m := &Transaction{Id: 1, SrNo: 7, Title: "Entropy"}
		assert.Equal(t, "Entropy", m.ToSelectOption().Name)
	})

	t.Run("falls back to serial number", func(t *testing.T) {
		m := &Transaction{Id: 1, SrNo: 7}
		assert.Equal(t, "Transaction #7", m.ToSelectOption().Name)
	})
}
