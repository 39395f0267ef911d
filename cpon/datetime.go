/*
Copyright (c) shv-go authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cpon

import (
	"fmt"
	"time"

	"github.com/silicon-heaven/shv-go/rpcvalue"
)

func fixedLocation(offsetMin int) *time.Location {
	return time.FixedZone("", offsetMin*60)
}

func dateTimeComponents(year, month, day, hour, minute, sec, ms int, loc *time.Location) time.Time {
	return time.Date(year, time.Month(month), day, hour, minute, sec, ms*1e6, loc)
}

// formatDateTime renders dt as YYYY-MM-DDTHH:MM:SS[.sss][±HHMM|Z], the
// body of a d"..." literal.
func formatDateTime(dt rpcvalue.DateTime) string {
	t := dt.Time()
	s := fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d",
		t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	if ms := t.Nanosecond() / 1e6; ms != 0 {
		s += fmt.Sprintf(".%03d", ms)
	}
	if !dt.IsValid() {
		return s
	}
	off := dt.UTCOffsetMinutes()
	if off == 0 {
		return s + "Z"
	}
	sign := "+"
	if off < 0 {
		sign = "-"
		off = -off
	}
	return s + fmt.Sprintf("%s%02d%02d", sign, off/60, off%60)
}

// parseDateTime parses the body of a d"..." literal. An empty body is the
// invalid-datetime sentinel.
func parseDateTime(body string) (rpcvalue.DateTime, error) {
	if body == "" {
		return rpcvalue.DateTime{TZQuarterHours: rpcvalue.TZInvalid}, nil
	}
	var year, month, day, hour, minute, sec, ms int
	rest := body
	n, err := fmt.Sscanf(rest, "%04d-%02d-%02d", &year, &month, &day)
	if err != nil || n != 3 || len(rest) < 10 {
		return rpcvalue.DateTime{}, fmt.Errorf("cpon: malformed datetime %q", body)
	}
	rest = rest[10:]
	if len(rest) == 0 {
		return rpcvalue.DateTime{}, fmt.Errorf("cpon: malformed datetime %q", body)
	}
	rest = rest[1:] // 'T' or ' ' separator
	if len(rest) < 8 {
		return rpcvalue.DateTime{}, fmt.Errorf("cpon: malformed datetime %q", body)
	}
	if _, err := fmt.Sscanf(rest[:8], "%02d:%02d:%02d", &hour, &minute, &sec); err != nil {
		return rpcvalue.DateTime{}, fmt.Errorf("cpon: malformed datetime %q", body)
	}
	rest = rest[8:]
	if len(rest) > 0 && rest[0] == '.' {
		j := 1
		for j < len(rest) && rest[j] >= '0' && rest[j] <= '9' {
			j++
		}
		fmt.Sscanf(rest[1:j], "%d", &ms)
		rest = rest[j:]
	}

	offsetMin := 0
	if rest == "Z" || rest == "z" {
		rest = ""
	} else if len(rest) > 0 && (rest[0] == '+' || rest[0] == '-') {
		sign := 1
		if rest[0] == '-' {
			sign = -1
		}
		body := rest[1:]
		var hh, mm int
		switch len(body) {
		case 2:
			fmt.Sscanf(body, "%02d", &hh)
		case 4:
			fmt.Sscanf(body, "%02d%02d", &hh, &mm)
		default:
			return rpcvalue.DateTime{}, fmt.Errorf("cpon: malformed datetime offset %q", body)
		}
		offsetMin = sign * (hh*60 + mm)
		rest = ""
	}
	if rest != "" {
		return rpcvalue.DateTime{}, fmt.Errorf("cpon: trailing garbage %q in datetime", rest)
	}

	loc := fixedLocation(offsetMin)
	t := dateTimeComponents(year, month, day, hour, minute, sec, ms, loc)
	return rpcvalue.DateTimeFromTime(t), nil
}
