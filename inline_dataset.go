package main

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pivolan/chart_builder/domain/models"
)

var numberRe = regexp.MustCompile(`-?\d*\.?\d+`)

// ParseInlineDataset turns a chat message into a two-column dataset. Every
// line "label value" or "label, value" becomes one row; a line that is just a
// number gets its line number as label. Lines without a number are skipped.
func ParseInlineDataset(text string) []models.Record {
	var records []models.Record
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		loc := lastNumber(line)
		if loc == nil {
			continue
		}
		value, err := strconv.ParseFloat(line[loc[0]:loc[1]], 64)
		if err != nil {
			continue
		}
		label := strings.Trim(strings.TrimSpace(line[:loc[0]]), ",;:=\t ")
		if label == "" {
			label = strconv.Itoa(len(records) + 1)
		}

		records = append(records, models.Record{
			{Name: "label", Value: models.Str(label)},
			{Name: "value", Value: models.Num(value)},
		})
	}
	return records
}

// lastNumber finds the number closing the line; "2024-01 15" yields 15.
func lastNumber(line string) []int {
	matches := numberRe.FindAllStringIndex(line, -1)
	if len(matches) == 0 {
		return nil
	}
	loc := matches[len(matches)-1]
	if loc[1] != len(line) {
		return nil
	}
	return loc
}
