package util

import (
	"regexp"
	"strconv"
	"strings"
)

var reMoney = regexp.MustCompile(`\$?\s?(\d[\d,]*(?:\.\d+)?)\s*([kKmM])?\b`)

// ParseSalaryRange pulls up to two annual amounts out of free text like
// "$70k", "$70,000 - $90,000" or "$120K/yr – $160K/yr". A single amount
// fills both ends. Amounts under 1000 without a k/M suffix are ignored
// (hourly rates, job ids in prose).
func ParseSalaryRange(s string) (min, max int) {
	if strings.TrimSpace(s) == "" {
		return 0, 0
	}

	var amounts []int
	for _, m := range reMoney.FindAllStringSubmatch(s, -1) {
		v := parseAmount(m[1], m[2])
		if v <= 0 {
			continue
		}
		amounts = append(amounts, v)
		if len(amounts) == 2 {
			break
		}
	}

	switch len(amounts) {
	case 0:
		return 0, 0
	case 1:
		return amounts[0], amounts[0]
	default:
		lo, hi := amounts[0], amounts[1]
		if hi < lo {
			lo, hi = hi, lo
		}
		return lo, hi
	}
}

func parseAmount(num, suffix string) int {
	num = strings.ReplaceAll(num, ",", "")
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}

	switch strings.ToLower(suffix) {
	case "k":
		f *= 1_000
	case "m":
		f *= 1_000_000
	default:
		if f < 1000 {
			return 0
		}
	}
	return int(f)
}
