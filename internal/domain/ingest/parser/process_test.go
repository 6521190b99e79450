package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkmdale/your-ai-finance-brain-sub003/internal/domain/ingest/sniffer"
	"github.com/jkmdale/your-ai-finance-brain-sub003/internal/domain/transaction"
)

func TestProcess(t *testing.T) {
	t.Run("anz end to end", func(t *testing.T) {
		data := []byte("Date,Amount,Payee,Description\n2024-01-01,-75.00,Countdown,Groceries\n")
		result, err := Process(data, testOwner)
		require.NoError(t, err)

		assert.Equal(t, transaction.SourceANZ, result.Source)
		assert.True(t, result.Recognized)
		require.Len(t, result.Transactions, 1)

		tx := result.Transactions[0]
		assert.Equal(t, "2024-01-01", tx.Date)
		assert.Equal(t, "-75", tx.Amount.String())
		assert.Equal(t, "Countdown - Groceries", tx.Description)
	})

	t.Run("blank rows recorded as skips", func(t *testing.T) {
		data := []byte("Date,Amount,Payee,Description\n2024-01-01,-1.00,a,b\n\n2024-01-02,-2.00,c,d\n")
		result, err := Process(data, testOwner)
		require.NoError(t, err)

		assert.Len(t, result.Transactions, 2)
		require.Len(t, result.Diagnostics.Skipped, 1)
		assert.Equal(t, 2, result.Diagnostics.Skipped[0].Index)
		assert.Equal(t, "blank row", result.Diagnostics.Skipped[0].Reason)
	})

	t.Run("column mismatch skipped, rest of file parsed", func(t *testing.T) {
		data := []byte("Date,Amount,Payee,Description\n2024-01-01,-1.00,a,b\nonly,three,cells\n2024-01-02,-2.00,c,d\n")
		result, err := Process(data, testOwner)
		require.NoError(t, err)

		assert.Len(t, result.Transactions, 2)
		require.Len(t, result.Diagnostics.Skipped, 1)
		assert.Equal(t, "column count mismatch", result.Diagnostics.Skipped[0].Reason)
	})

	t.Run("repeated header rows skipped with warning", func(t *testing.T) {
		data := []byte("Date,Amount,Payee,Description\n2024-01-01,-1.00,a,b\nDate,Amount,Payee,Description\n2024-01-02,-2.00,c,d\n")
		result, err := Process(data, testOwner)
		require.NoError(t, err)

		assert.Len(t, result.Transactions, 2)
		assert.Equal(t, 2, result.HeaderRows)
		require.NotEmpty(t, result.Diagnostics.Warnings)
		assert.Contains(t, result.Diagnostics.Warnings[0], "2 header rows")
	})

	t.Run("unrecognized format uses generic with warning", func(t *testing.T) {
		data := []byte("Date,Amount,Memo\n2024-01-01,-5.00,something\n")
		result, err := Process(data, testOwner)
		require.NoError(t, err)

		assert.False(t, result.Recognized)
		assert.Equal(t, transaction.SourceGeneric, result.Source)
		require.Len(t, result.Transactions, 1)
		assert.Equal(t, "something", result.Transactions[0].Description)
		require.NotEmpty(t, result.Diagnostics.Warnings)
		assert.Contains(t, result.Diagnostics.Warnings[0], "unrecognized")
	})

	t.Run("asb routed through keyed decoder", func(t *testing.T) {
		data := []byte("Date,Amount,Description\n2024-01-02,-10.00,Bus fare\n")
		result, err := Process(data, testOwner)
		require.NoError(t, err)

		assert.Equal(t, transaction.SourceASB, result.Source)
		require.Len(t, result.Transactions, 1)
		assert.Equal(t, "debit", result.Transactions[0].Tag)
	})

	t.Run("asb malformed row skipped, rest of section parsed", func(t *testing.T) {
		data := []byte("Date,Amount,Description\n2024-01-02,-10.00,Bus fare\nbroken,row\n2024-01-03,250.00,Refund\n")
		result, err := Process(data, testOwner)
		require.NoError(t, err)

		assert.Empty(t, result.Diagnostics.Errors)
		require.Len(t, result.Transactions, 2)
		assert.Equal(t, "Bus fare", result.Transactions[0].Description)
		assert.Equal(t, "Refund", result.Transactions[1].Description)
		require.Len(t, result.Diagnostics.Skipped, 1)
		assert.Equal(t, 2, result.Diagnostics.Skipped[0].Index)
		assert.Equal(t, "column count mismatch", result.Diagnostics.Skipped[0].Reason)
	})

	t.Run("asb delimiter-only and repeated header rows skipped", func(t *testing.T) {
		data := []byte("Date,Amount,Description\n2024-01-02,-10.00,Bus fare\n,,\nDate,Amount,Description\n2024-01-03,250.00,Refund\n")
		result, err := Process(data, testOwner)
		require.NoError(t, err)

		require.Len(t, result.Transactions, 2)
		for _, tx := range result.Transactions {
			assert.True(t, tx.Amount.Valid)
		}

		reasons := make(map[string]int)
		for _, skip := range result.Diagnostics.Skipped {
			reasons[skip.Reason]++
		}
		assert.Equal(t, 1, reasons["blank row"])
		assert.Equal(t, 1, reasons["repeated header row"])
	})

	t.Run("asb with metadata preamble", func(t *testing.T) {
		data := []byte("Created date / time: 12 Feb 2024\nBank 12; Branch 3405\n\nDate,Amount,Description\n2024-01-02,-10.00,Bus fare\n")
		result, err := Process(data, testOwner)
		require.NoError(t, err)

		assert.Equal(t, transaction.SourceASB, result.Source)
		require.Len(t, result.Transactions, 1)
		assert.Equal(t, "Bus fare", result.Transactions[0].Description)
	})

	t.Run("structural errors are fatal", func(t *testing.T) {
		_, err := Process([]byte(""), testOwner)
		assert.ErrorIs(t, err, sniffer.ErrEmptyFile)

		_, err = Process([]byte("nothing tabular here\n"), testOwner)
		assert.ErrorIs(t, err, sniffer.ErrNoHeadersFound)
	})
}

func TestProcessRows(t *testing.T) {
	t.Run("spreadsheet rows with leading blanks", func(t *testing.T) {
		rows := [][]string{
			{"", ""},
			{"Date", "Amount", "Payee", "Description"},
			{"2024-01-01", "-75.00", "Countdown", "Groceries"},
		}
		result, err := ProcessRows(rows, testOwner)
		require.NoError(t, err)

		assert.Equal(t, transaction.SourceANZ, result.Source)
		require.Len(t, result.Transactions, 1)
		assert.Equal(t, "Countdown - Groceries", result.Transactions[0].Description)
	})

	t.Run("trimmed trailing cells treated as empty fields", func(t *testing.T) {
		rows := [][]string{
			{"Date", "Amount", "Transaction Details"},
			{"2024-01-03", "-42.00"},
		}
		result, err := ProcessRows(rows, testOwner)
		require.NoError(t, err)

		assert.Equal(t, transaction.SourceWestpac, result.Source)
		assert.Empty(t, result.Diagnostics.Skipped)
		require.Len(t, result.Transactions, 1)
		assert.Equal(t, "2024-01-03", result.Transactions[0].Date)
		assert.Equal(t, "-42", result.Transactions[0].Amount.String())
		assert.Empty(t, result.Transactions[0].Description)
	})

	t.Run("all blank sheet is empty", func(t *testing.T) {
		_, err := ProcessRows([][]string{{"", ""}, {" "}}, testOwner)
		assert.ErrorIs(t, err, sniffer.ErrEmptyFile)
	})
}
