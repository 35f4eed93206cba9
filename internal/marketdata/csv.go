package marketdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/Atifelx/CryptoClever-sub000/pkg/model"
)

// csvHeader is the column order for candle files.
var csvHeader = []string{"time", "open", "high", "low", "close", "volume"}

// ReadCandles parses candles from CSV. A header row is skipped when the
// first field is not numeric. The parsed candles are validated for ordering
// and finite values before being returned.
func ReadCandles(r io.Reader) ([]model.Candle, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(csvHeader)

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(records) == 0 {
		return []model.Candle{}, nil
	}

	start := 0
	if _, err := strconv.ParseInt(records[0][0], 10, 64); err != nil {
		start = 1
	}

	candles := make([]model.Candle, 0, len(records)-start)
	for i := start; i < len(records); i++ {
		candle, err := parseRecord(records[i])
		if err != nil {
			return nil, fmt.Errorf("parsing csv row %d: %w", i+1, err)
		}
		candles = append(candles, candle)
	}

	if err := model.ValidateCandles(candles); err != nil {
		return nil, fmt.Errorf("validating csv candles: %w", err)
	}
	return candles, nil
}

// ReadCandlesFile loads candles from a CSV file on disk.
func ReadCandlesFile(path string) ([]model.Candle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening candle file: %w", err)
	}
	defer f.Close()

	candles, err := ReadCandles(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return candles, nil
}

// WriteCandles writes candles as CSV with a header row.
func WriteCandles(w io.Writer, candles []model.Candle) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for i, c := range candles {
		record := []string{
			strconv.FormatInt(c.Time, 10),
			formatPrice(c.Open),
			formatPrice(c.High),
			formatPrice(c.Low),
			formatPrice(c.Close),
			formatPrice(c.Volume),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing csv row %d: %w", i+1, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCandlesFile writes candles to a CSV file, replacing any existing one.
func WriteCandlesFile(path string, candles []model.Candle) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating candle file: %w", err)
	}
	if err := WriteCandles(f, candles); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func parseRecord(record []string) (model.Candle, error) {
	var candle model.Candle

	ts, err := strconv.ParseInt(record[0], 10, 64)
	if err != nil {
		return candle, fmt.Errorf("time %q: %w", record[0], err)
	}
	candle.Time = ts

	fields := []struct {
		name string
		dst  *float64
	}{
		{"open", &candle.Open},
		{"high", &candle.High},
		{"low", &candle.Low},
		{"close", &candle.Close},
		{"volume", &candle.Volume},
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(record[i+1], 64)
		if err != nil {
			return candle, fmt.Errorf("%s %q: %w", f.name, record[i+1], err)
		}
		*f.dst = v
	}
	return candle, nil
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
