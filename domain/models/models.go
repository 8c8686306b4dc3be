package models

import (
	"encoding/json"
	"strconv"
)

// Value is a single scalar cell of a dataset: a number or a string.
type Value struct {
	Number   float64
	Text     string
	IsNumber bool
}

func Num(v float64) Value {
	return Value{Number: v, IsNumber: true}
}

func Str(s string) Value {
	return Value{Text: s}
}

func (v Value) String() string {
	if v.IsNumber {
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	}
	return v.Text
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsNumber {
		return json.Marshal(v.Number)
	}
	return json.Marshal(v.Text)
}

type Cell struct {
	Name  string
	Value Value
}

// Record is one dataset row. Cell order is the key order of the source row.
type Record []Cell

// Get возвращает значение первой ячейки с указанным именем
func (r Record) Get(name string) (Value, bool) {
	for _, c := range r {
		if c.Name == name {
			return c.Value, true
		}
	}
	return Value{}, false
}

// Names returns distinct cell names in first-seen order.
func (r Record) Names() []string {
	seen := make(map[string]bool, len(r))
	names := make([]string, 0, len(r))
	for _, c := range r {
		if seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		names = append(names, c.Name)
	}
	return names
}

func (r Record) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, name := range r.Names() {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, _ := r.Get(name)
		val, err := v.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, val...)
	}
	return append(buf, '}'), nil
}

type FieldKind int

const (
	KindDimension FieldKind = iota
	KindMeasure
)

func (k FieldKind) String() string {
	if k == KindMeasure {
		return "measure"
	}
	return "dimension"
}

func (k FieldKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

type Field struct {
	Name string    `json:"name"`
	Kind FieldKind `json:"kind"`
}

// PieSlice is one group of the group-by-sum reduction.
type PieSlice struct {
	Key   Value   `json:"key"`
	Total float64 `json:"total"`
}

// Series is the aggregated data a chart type needs: Rows for bar and line
// charts, Slices for pie charts.
type Series struct {
	ChartType ChartType  `json:"chartType"`
	Rows      []Record   `json:"rows,omitempty"`
	Slices    []PieSlice `json:"slices,omitempty"`
}
