package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// keywordCluster groups surface forms of one concept across Korean and English spellings.
type keywordCluster struct {
	key   string
	forms []string
}

// menuItemClusters drive component name matching.
var menuItemClusters = []keywordCluster{
	{"steak", []string{"steak", "스테이크", "스테익"}},
	{"beef", []string{"beef", "소고기", "쇠고기", "비프"}},
	{"pork", []string{"pork", "돼지고기", "포크"}},
	{"chicken", []string{"chicken", "치킨", "닭고기", "닭"}},
	{"lamb", []string{"lamb", "양고기"}},
	{"lobster", []string{"lobster", "랍스터", "랍스타", "바닷가재"}},
	{"shrimp", []string{"shrimp", "prawn", "새우", "쉬림프"}},
	{"salmon", []string{"salmon", "연어"}},
	{"fish", []string{"fish", "생선"}},
	{"wine", []string{"wine", "와인", "포도주"}},
	{"champagne", []string{"champagne", "샴페인"}},
	{"juice", []string{"juice", "주스", "쥬스"}},
	{"coffee", []string{"coffee", "커피"}},
	{"salad", []string{"salad", "샐러드", "샐러듸"}},
	{"soup", []string{"soup", "수프", "스프"}},
	{"bread", []string{"bread", "baguette", "빵", "바게트"}},
	{"pasta", []string{"pasta", "파스타"}},
	{"rice", []string{"rice", "밥", "라이스"}},
	{"potato", []string{"potato", "감자", "포테이토"}},
	{"vegetable", []string{"vegetable", "채소", "야채"}},
	{"egg", []string{"egg", "scrambled", "계란", "달걀", "에그"}},
	{"bacon", []string{"bacon", "베이컨"}},
	{"dessert", []string{"dessert", "디저트", "후식"}},
	{"cake", []string{"cake", "케이크", "케익"}},
	{"icecream", []string{"icecream", "아이스크림"}},
}

// dinnerSynonyms rewrite Korean or alternate spellings of dinner name tokens
// into the English tokens used in catalog names.
var dinnerSynonyms = []keywordCluster{
	{"valentine", []string{"발렌타인", "밸런타인", "발렌타인즈"}},
	{"french", []string{"프렌치", "프랑스"}},
	{"english", []string{"잉글리시", "잉글리쉬", "영국"}},
	{"champagne", []string{"샴페인"}},
	{"feast", []string{"피스트", "축제", "파티"}},
	{"dinner", []string{"디너", "저녁"}},
}

// displayDinnerNames maps catalog dinner names to their Korean display names.
var displayDinnerNames = map[string]string{
	"valentine dinner":       "발렌타인 디너",
	"french dinner":          "프렌치 디너",
	"english dinner":         "잉글리시 디너",
	"champagne feast dinner": "샴페인 축제 디너",
	"champagne feast":        "샴페인 축제 디너",
}

// displayStyleNames maps catalog style names to their Korean display names.
var displayStyleNames = map[string]string{
	"simple style": "심플",
	"simple":       "심플",
	"grand style":  "그랜드",
	"grand":        "그랜드",
	"deluxe style": "디럭스",
	"deluxe":       "디럭스",
}

var folder = cases.Fold()

// fold applies NFC normalization and Unicode case folding.
func fold(s string) string {
	return folder.String(norm.NFC.String(strings.TrimSpace(s)))
}

// compact folds s and strips all whitespace.
func compact(s string) string {
	return strings.Join(strings.Fields(fold(s)), "")
}

// normalizeDinnerName folds, strips whitespace and rewrites known synonyms.
func normalizeDinnerName(s string) string {
	out := compact(s)
	for _, c := range dinnerSynonyms {
		for _, form := range c.forms {
			out = strings.ReplaceAll(out, compact(form), c.key)
		}
	}
	return out
}

// clustersOf returns the keys of every cluster whose surface form appears in name.
func clustersOf(name string) map[string]struct{} {
	n := compact(name)
	keys := make(map[string]struct{})
	if n == "" {
		return keys
	}
	for _, c := range menuItemClusters {
		for _, form := range c.forms {
			if strings.Contains(n, compact(form)) {
				keys[c.key] = struct{}{}
				break
			}
		}
	}
	return keys
}

// MatchComponentName reports whether an utterance fragment refers to a catalog
// component: direct substring containment either way, or a shared keyword cluster.
func MatchComponentName(catalogName, fragment string) bool {
	a, b := compact(catalogName), compact(fragment)
	if a == "" || b == "" {
		return false
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	ca := clustersOf(catalogName)
	for key := range clustersOf(fragment) {
		if _, ok := ca[key]; ok {
			return true
		}
	}
	return false
}

// DisplayDinnerName returns the Korean display name for a dinner, or the name itself.
func DisplayDinnerName(name string) string {
	if ko, ok := displayDinnerNames[fold(name)]; ok {
		return ko
	}
	return name
}

// DisplayStyleName returns the Korean display name for a style, or the name itself.
func DisplayStyleName(name string) string {
	if ko, ok := displayStyleNames[fold(name)]; ok {
		return ko
	}
	return name
}
