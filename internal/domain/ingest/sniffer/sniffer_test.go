package sniffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkmdale/your-ai-finance-brain-sub003/internal/domain/transaction"
)

func TestDetect(t *testing.T) {
	t.Run("recognizes each institution", func(t *testing.T) {
		cases := map[transaction.Source]string{
			transaction.SourceANZ:      "Date,Amount,Payee,Description\n",
			transaction.SourceKiwibank: "Date,Amount,Details,Particulars,Reference\n",
			transaction.SourceASB:      "Date,Amount,Description\n",
			transaction.SourceWestpac:  "Date,Amount,Transaction Details\n",
		}
		for source, header := range cases {
			cfg, err := Detect([]byte(header + "2024-01-01,-1.00,x\n"))
			require.NoError(t, err, "source %s", source)
			assert.Equal(t, source, cfg.Source)
			assert.True(t, cfg.Recognized)
		}
	})

	t.Run("header match is case and whitespace insensitive", func(t *testing.T) {
		cfg, err := Detect([]byte("DATE, AMOUNT ,Payee,  Description\n"))
		require.NoError(t, err)
		assert.Equal(t, transaction.SourceANZ, cfg.Source)
		assert.True(t, cfg.Recognized)
	})

	t.Run("keyed shape for asb", func(t *testing.T) {
		cfg, err := Detect([]byte("Date,Amount,Description\n2024-01-01,-1.00,x\n"))
		require.NoError(t, err)
		assert.Equal(t, ShapeKeyed, cfg.Shape)
	})

	t.Run("delimited shape for positional formats", func(t *testing.T) {
		cfg, err := Detect([]byte("Date,Amount,Payee,Description\n"))
		require.NoError(t, err)
		assert.Equal(t, ShapeDelimited, cfg.Shape)
	})

	t.Run("metadata preamble before the header", func(t *testing.T) {
		data := "Account: 01-1234-5678901-00\nExported: 2024-02-01\n\nDate,Amount,Payee,Description\n2024-01-01,-75.00,Countdown,Groceries\n"
		cfg, err := Detect([]byte(data))
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.SkipLines)
		assert.Equal(t, transaction.SourceANZ, cfg.Source)
	})

	t.Run("unknown headers fall back to generic", func(t *testing.T) {
		cfg, err := Detect([]byte("Date,Amount,Memo\n2024-01-01,-1.00,x\n"))
		require.NoError(t, err)
		assert.Equal(t, transaction.SourceGeneric, cfg.Source)
		assert.False(t, cfg.Recognized)
	})

	t.Run("semicolon delimiter", func(t *testing.T) {
		cfg, err := Detect([]byte("Date;Amount;Payee;Description\n"))
		require.NoError(t, err)
		assert.Equal(t, ';', cfg.Delimiter)
	})

	t.Run("counts duplicate header rows", func(t *testing.T) {
		data := "Date,Amount,Payee,Description\n2024-01-01,-1.00,a,b\nDate,Amount,Payee,Description\n"
		cfg, err := Detect([]byte(data))
		require.NoError(t, err)
		assert.Equal(t, 2, cfg.HeaderRows)
	})

	t.Run("utf8 bom stripped", func(t *testing.T) {
		data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Date,Amount,Payee,Description\n")...)
		cfg, err := Detect(data)
		require.NoError(t, err)
		assert.Equal(t, transaction.SourceANZ, cfg.Source)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := Detect([]byte("   \n  \n"))
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("no headers", func(t *testing.T) {
		_, err := Detect([]byte("just some prose\nwith no structure\n"))
		assert.ErrorIs(t, err, ErrNoHeadersFound)
	})

	t.Run("binary content", func(t *testing.T) {
		_, err := Detect([]byte{0x00, 0x01, 0x02, 'D', 'a', 't', 'e'})
		assert.ErrorIs(t, err, ErrDecoding)
	})
}

func TestFingerprint(t *testing.T) {
	a, err := Detect([]byte("Date,Amount,Payee,Description\n"))
	require.NoError(t, err)
	b, err := Detect([]byte("date, amount, payee, description\n"))
	require.NoError(t, err)
	assert.Equal(t, a.Fingerprint, b.Fingerprint)

	c, err := Detect([]byte("Date,Amount,Description\n"))
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint, c.Fingerprint)
}

func TestReadRows(t *testing.T) {
	t.Run("preserves blank row indices", func(t *testing.T) {
		data := "Date,Amount,Payee,Description\n2024-01-01,-1.00,a,b\n\n2024-01-02,-2.00,c,d\n"
		rows, bad := ReadRows([]byte(data), ',')
		require.Len(t, rows, 4)
		assert.Empty(t, bad)
		assert.Nil(t, rows[2])
		assert.Equal(t, []string{"2024-01-02", "-2.00", "c", "d"}, rows[3])
	})

	t.Run("trailing blank rows trimmed", func(t *testing.T) {
		rows, _ := ReadRows([]byte("Date,Amount,Payee,Description\n\n\n"), ',')
		assert.Len(t, rows, 1)
	})

	t.Run("ragged rows are kept", func(t *testing.T) {
		rows, bad := ReadRows([]byte("a,b,c\n1,2\n"), ',')
		assert.Empty(t, bad)
		require.Len(t, rows, 2)
		assert.Len(t, rows[1], 2)
	})
}
