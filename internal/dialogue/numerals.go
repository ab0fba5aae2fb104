package dialogue

import (
	"regexp"
	"strconv"
)

var (
	digitOrdinal  = regexp.MustCompile(`(\d+)\s*번\s*(?:째|디너|메뉴|주문)`)
	nativeOrdinal = regexp.MustCompile(`(첫|두|세|네|다섯|여섯|일곱|여덟|아홉|열)\s*번\s*째`)
)

var nativeNumbers = map[string]int{
	"첫": 1, "두": 2, "세": 3, "네": 4, "다섯": 5,
	"여섯": 6, "일곱": 7, "여덟": 8, "아홉": 9, "열": 10,
}

// parseOrdinal finds a 1-based line reference such as "2번 디너" or "두 번째".
func parseOrdinal(s string) (int, bool) {
	if m := digitOrdinal.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n, true
		}
	}
	if m := nativeOrdinal.FindStringSubmatch(s); m != nil {
		return nativeNumbers[m[1]], true
	}
	return 0, false
}
