package models

import (
	"encoding/json"
	"fmt"
)

type Channel int

const (
	ChannelXAxis Channel = iota
	ChannelYAxis
	ChannelDimension
	ChannelMeasure
	channelCount
)

var channelIDs = [channelCount]string{"xAxis", "yAxis", "dimension", "measure"}
var channelLabels = [channelCount]string{"X-Axis", "Y-Axis", "Dimension", "Measure"}

// Channels returns the fixed channel enumeration in drop zone order.
func Channels() []Channel {
	return []Channel{ChannelXAxis, ChannelYAxis, ChannelDimension, ChannelMeasure}
}

// ID is the drop zone id the drag collaborator reports for the channel.
func (c Channel) ID() string {
	if c < 0 || c >= channelCount {
		return fmt.Sprintf("channel(%d)", int(c))
	}
	return channelIDs[c]
}

// Valid reports whether c is one of Channels().
func (c Channel) Valid() bool {
	return c >= 0 && c < channelCount
}

func (c Channel) String() string {
	return c.ID()
}

func (c Channel) Label() string {
	if c < 0 || c >= channelCount {
		return c.ID()
	}
	return channelLabels[c]
}

// RequiredKind is the only field kind the channel accepts.
func (c Channel) RequiredKind() FieldKind {
	switch c {
	case ChannelYAxis, ChannelMeasure:
		return KindMeasure
	default:
		return KindDimension
	}
}

func ParseChannel(id string) (Channel, bool) {
	for i, v := range channelIDs {
		if v == id {
			return Channel(i), true
		}
	}
	return 0, false
}

// Binding maps every channel to an optional field name. It is a value type:
// With returns a modified copy and never changes the receiver.
type Binding struct {
	fields [channelCount]string
	bound  [channelCount]bool
}

func (b Binding) Field(c Channel) (string, bool) {
	if c < 0 || c >= channelCount {
		return "", false
	}
	return b.fields[c], b.bound[c]
}

func (b Binding) IsBound(c Channel) bool {
	_, ok := b.Field(c)
	return ok
}

func (b Binding) With(c Channel, field string) Binding {
	if c < 0 || c >= channelCount {
		return b
	}
	b.fields[c] = field
	b.bound[c] = true
	return b
}

func (b Binding) MarshalJSON() ([]byte, error) {
	out := make(map[string]*string, channelCount)
	for _, c := range Channels() {
		if name, ok := b.Field(c); ok {
			out[c.ID()] = &name
		} else {
			out[c.ID()] = nil
		}
	}
	return json.Marshal(out)
}

type ChartType int

const (
	ChartBar ChartType = iota
	ChartLine
	ChartPie
)

var chartTypeNames = map[ChartType]string{
	ChartBar:  "bar",
	ChartLine: "line",
	ChartPie:  "pie",
}

// requiredChannels is the single place that says which channels each chart
// type needs before it can be aggregated and drawn.
var requiredChannels = map[ChartType][]Channel{
	ChartBar:  {ChannelXAxis, ChannelYAxis},
	ChartLine: {ChannelXAxis, ChannelYAxis},
	ChartPie:  {ChannelDimension, ChannelMeasure},
}

func ChartTypes() []ChartType {
	return []ChartType{ChartBar, ChartLine, ChartPie}
}

func (t ChartType) String() string {
	if name, ok := chartTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("chart(%d)", int(t))
}

func (t ChartType) Valid() bool {
	_, ok := chartTypeNames[t]
	return ok
}

func (t ChartType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// RequiredChannels returns a fresh copy of the channels t needs.
func (t ChartType) RequiredChannels() []Channel {
	req := requiredChannels[t]
	out := make([]Channel, len(req))
	copy(out, req)
	return out
}

func ParseChartType(name string) (ChartType, error) {
	for t, n := range chartTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownChartType, name)
}
