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
	"strconv"
	"strings"

	"github.com/silicon-heaven/shv-go/rpcvalue"
)

// formatDecimal renders a Decimal the way Cpon does: digits with a decimal
// point inserted -Precision places from the right (for Precision < 0) or
// the bare mantissa (for Precision == 0), always suffixed with 'n'.
func formatDecimal(d rpcvalue.Decimal) string {
	if d.Precision == 0 {
		return strconv.FormatInt(d.Mantissa, 10) + "n"
	}
	if d.Precision > 0 {
		return strconv.FormatInt(d.Mantissa, 10) + "e" + strconv.FormatInt(int64(d.Precision), 10) + "n"
	}
	neg := d.Mantissa < 0
	digits := strconv.FormatInt(d.Mantissa, 10)
	if neg {
		digits = digits[1:]
	}
	frac := int(-d.Precision)
	for len(digits) <= frac {
		digits = "0" + digits
	}
	intPart := digits[:len(digits)-frac]
	fracPart := digits[len(digits)-frac:]
	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	sb.WriteString(intPart)
	sb.WriteByte('.')
	sb.WriteString(fracPart)
	sb.WriteByte('n')
	return sb.String()
}

// parseDecimal parses a Cpon decimal literal body (without the trailing
// 'n'): either "{mantissa}e{exp}" or "{intpart}.{fracpart}".
func parseDecimal(body string) (rpcvalue.Decimal, error) {
	if i := strings.IndexAny(body, "eE"); i >= 0 {
		mant, err := strconv.ParseInt(body[:i], 10, 64)
		if err != nil {
			return rpcvalue.Decimal{}, fmt.Errorf("cpon: malformed decimal %q: %w", body, err)
		}
		exp, err := strconv.ParseInt(body[i+1:], 10, 16)
		if err != nil {
			return rpcvalue.Decimal{}, fmt.Errorf("cpon: malformed decimal exponent %q: %w", body, err)
		}
		return rpcvalue.NewDecimal(mant, int16(exp)), nil
	}
	if i := strings.IndexByte(body, '.'); i >= 0 {
		digits := body[:i] + body[i+1:]
		mant, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return rpcvalue.Decimal{}, fmt.Errorf("cpon: malformed decimal %q: %w", body, err)
		}
		frac := len(body) - i - 1
		return rpcvalue.NewDecimal(mant, int16(-frac)), nil
	}
	mant, err := strconv.ParseInt(body, 10, 64)
	if err != nil {
		return rpcvalue.Decimal{}, fmt.Errorf("cpon: malformed decimal %q: %w", body, err)
	}
	return rpcvalue.NewDecimal(mant, 0), nil
}
