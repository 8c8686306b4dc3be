package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/pivolan/chart_builder/domain/models"
)

// ReadJSON reads an array of flat objects. Object key order is kept, which a
// plain map decode would lose.
func ReadJSON(r io.Reader) ([]models.Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}

	var records []models.Record
	for i := 0; dec.More(); i++ {
		rec, err := decodeObject(dec)
		if err != nil {
			return nil, fmt.Errorf("error decoding json row %d: %w", i, err)
		}
		records = append(records, rec)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}
	return records, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("error decoding json: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("error decoding json: expected %q, got %v", want, tok)
	}
	return nil
}

func decodeObject(dec *json.Decoder) (models.Record, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	var rec models.Record
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key %v", tok)
		}

		var raw interface{}
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		v, err := scalarValue(raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		rec = append(rec, models.Cell{Name: key, Value: v})
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return rec, nil
}

var errNotScalar = errors.New("value is not a scalar")

// scalarValue maps decoded JSON to a cell value. Only JSON numbers become
// numbers; null is an empty string and booleans are text.
func scalarValue(raw interface{}) (models.Value, error) {
	switch v := raw.(type) {
	case json.Number:
		f, err := strconv.ParseFloat(v.String(), 64)
		if err != nil || math.IsInf(f, 0) {
			return models.Str(v.String()), nil
		}
		return models.Num(f), nil
	case string:
		return models.Str(v), nil
	case bool:
		return models.Str(strconv.FormatBool(v)), nil
	case nil:
		return models.Str(""), nil
	default:
		return models.Value{}, errNotScalar
	}
}
