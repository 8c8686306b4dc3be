package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelRequiredKind(t *testing.T) {
	tests := []struct {
		id   string
		want FieldKind
	}{
		{"xAxis", KindDimension},
		{"yAxis", KindMeasure},
		{"dimension", KindDimension},
		{"measure", KindMeasure},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			c, ok := ParseChannel(tt.id)
			require.True(t, ok)
			assert.Equal(t, tt.id, c.ID())
			assert.Equal(t, tt.want, c.RequiredKind())
		})
	}

	_, ok := ParseChannel("size")
	assert.False(t, ok)
}

func TestBindingWithKeepsReceiver(t *testing.T) {
	var b Binding
	b2 := b.With(ChannelXAxis, "month")

	assert.False(t, b.IsBound(ChannelXAxis))
	name, ok := b2.Field(ChannelXAxis)
	assert.True(t, ok)
	assert.Equal(t, "month", name)
	assert.False(t, b2.IsBound(ChannelDimension))
}

func TestBindingJSON(t *testing.T) {
	b := Binding{}.With(ChannelXAxis, "month").With(ChannelMeasure, "sales")
	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, `{"xAxis":"month","yAxis":null,"dimension":null,"measure":"sales"}`, string(data))
}

func TestChartTypeRequiredChannels(t *testing.T) {
	assert.Equal(t, []Channel{ChannelXAxis, ChannelYAxis}, ChartBar.RequiredChannels())
	assert.Equal(t, []Channel{ChannelXAxis, ChannelYAxis}, ChartLine.RequiredChannels())
	assert.Equal(t, []Channel{ChannelDimension, ChannelMeasure}, ChartPie.RequiredChannels())

	// callers must not be able to edit the table
	req := ChartPie.RequiredChannels()
	req[0] = ChannelXAxis
	assert.Equal(t, ChannelDimension, ChartPie.RequiredChannels()[0])
}

func TestParseChartType(t *testing.T) {
	for _, ct := range ChartTypes() {
		got, err := ParseChartType(ct.String())
		require.NoError(t, err)
		assert.Equal(t, ct, got)
	}
	_, err := ParseChartType("scatter")
	assert.True(t, errors.Is(err, ErrUnknownChartType))
}

func TestRecordJSONKeepsOrder(t *testing.T) {
	r := Record{
		{Name: "month", Value: Str("Jan")},
		{Name: "sales", Value: Num(10.5)},
		{Name: "month", Value: Str("ignored")},
	}
	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"month":"Jan","sales":10.5}`, string(data))
	assert.Equal(t, []string{"month", "sales"}, r.Names())
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "10", Num(10).String())
	assert.Equal(t, "0.25", Num(0.25).String())
	assert.Equal(t, "Jan", Str("Jan").String())
}
