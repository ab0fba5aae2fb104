package parsers

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mrdaeback/voice-order/internal/agent/model"
	logx "github.com/mrdaeback/voice-order/pkg/logger"
)

// DefaultReplyMessage is used when nothing usable can be recovered from the reply.
const DefaultReplyMessage = "처리 중 오류가 발생했습니다. 다시 말씀해주세요."

// basic safety limits to avoid pathological inputs
const (
	maxContentLen = 64 * 1024 // 64KB
	maxErrSnippet = 200       // limit error snippet size
)

var (
	fencePattern  = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)```")
	intentStart   = regexp.MustCompile(`\{\s*"intent"`)
	stringFields  = []string{"message", "specialRequest"}
	scalarFields  = []string{"intent", "menuName", "styleName", "quantity", "addressIndex", "menuItemName", "action", "menuItemQuantity", "lineIndex"}
	fieldPatterns = map[string]*regexp.Regexp{}
)

func init() {
	for _, f := range scalarFields {
		fieldPatterns[f] = regexp.MustCompile(`"` + f + `"\s*:\s*"?([^"\},]+)"?`)
	}
	for _, f := range stringFields {
		fieldPatterns[f] = regexp.MustCompile(`"` + f + `"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	}
}

type wireEntities struct {
	MenuName         flexString `json:"menuName"`
	StyleName        flexString `json:"styleName"`
	Quantity         flexInt    `json:"quantity"`
	AddressIndex     flexInt    `json:"addressIndex"`
	MenuItemName     flexString `json:"menuItemName"`
	Action           flexString `json:"action"`
	MenuItemQuantity flexInt    `json:"menuItemQuantity"`
	LineIndex        flexInt    `json:"lineIndex"`
	SpecialRequest   flexString `json:"specialRequest"`
}

type wireReply struct {
	Intent   flexString    `json:"intent"`
	Entities *wireEntities `json:"entities"`
	Message  flexString    `json:"message"`
}

// ParseOrderResponse reads the language service reply into an Interpretation.
// It never fails: malformed output degrades to pattern extraction, and a
// missing intent becomes ASK_MENU_INFO.
func ParseOrderResponse(content string) (resp model.Interpretation) {
	resp = model.Interpretation{
		Intent:          model.IntentAskMenuInfo,
		ParsingMetadata: map[string]any{},
	}

	// panic safety
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "order_parser").Msgf("panic recovered: %v", r)
			resp = model.Interpretation{
				Intent:          model.IntentAskMenuInfo,
				Message:         DefaultReplyMessage,
				Fallback:        true,
				ParsingMetadata: map[string]any{"panic": fmt.Sprint(r)},
			}
		}
	}()

	addErr := func(msg string) {
		v, _ := resp.ParsingMetadata["parsing_errors"].([]string)
		resp.ParsingMetadata["parsing_errors"] = append(v, msg)
	}

	if len(content) > maxContentLen {
		logx.Warn().
			Str("component", "order_parser").
			Int("max_len", maxContentLen).
			Int("orig_len", len(content)).
			Msg("content truncated due to size limit")
		content = content[:maxContentLen]
		resp.ParsingMetadata["truncated"] = true
	}
	if !utf8.ValidString(content) {
		content = strings.ToValidUTF8(content, "")
		addErr("invalid utf8 replaced")
	}

	body := ExtractJSONObject(StripCodeFences(content))
	if body == "" {
		addErr("no json object: " + safeSnippet(content))
		resp.Fallback = true
		resp.Message = strings.TrimSpace(content)
		if resp.Message == "" {
			resp.Message = DefaultReplyMessage
		}
		return resp
	}

	decoded, err := decodeStrict(body)
	if err == nil {
		decoded.ParsingMetadata = resp.ParsingMetadata
		return decoded
	}
	addErr("strict decode: " + safeSnippet(err.Error()))

	resp = extractByPattern(body, resp.ParsingMetadata)
	resp.Fallback = true
	if resp.Message == "" {
		resp.Message = DefaultReplyMessage
	}
	return resp
}

// StripCodeFences returns the content of the first fenced block, or the input unchanged.
func StripCodeFences(s string) string {
	if m := fencePattern.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	if i := strings.Index(s, "```"); i >= 0 {
		// unterminated fence
		rest := s[i+3:]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[nl+1:]
		}
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(s)
}

// ExtractJSONObject returns the last balanced object that starts with an
// "intent" key, else the object starting at the first '{'. An unbalanced
// object is returned up to the end of input so pattern extraction can still run.
func ExtractJSONObject(s string) string {
	starts := intentStart.FindAllStringIndex(s, -1)
	for i := len(starts) - 1; i >= 0; i-- {
		if obj, ok := balancedFrom(s, starts[i][0]); ok {
			return obj
		}
	}
	first := strings.IndexByte(s, '{')
	if len(starts) > 0 {
		first = starts[0][0]
	}
	if first < 0 {
		return ""
	}
	obj, _ := balancedFrom(s, first)
	return obj
}

// balancedFrom scans brace depth from start, honoring string literals and escapes.
func balancedFrom(s string, start int) (string, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return s[start:], false
}

func decodeStrict(body string) (model.Interpretation, error) {
	var w wireReply
	if err := json.Unmarshal([]byte(body), &w); err != nil {
		return model.Interpretation{}, err
	}
	// some replies put the slots at the top level instead of under "entities"
	if w.Entities == nil {
		w.Entities = &wireEntities{}
		if err := json.Unmarshal([]byte(body), w.Entities); err != nil {
			return model.Interpretation{}, err
		}
	}
	return model.Interpretation{
		Intent:   model.ParseIntent(w.Intent.Value),
		Entities: toEntityBag(*w.Entities),
		Message:  w.Message.Value,
	}, nil
}

func toEntityBag(e wireEntities) model.EntityBag {
	return model.EntityBag{
		MenuName:         e.MenuName.Value,
		StyleName:        e.StyleName.Value,
		Quantity:         e.Quantity.ptr(),
		AddressIndex:     e.AddressIndex.ptr(),
		MenuItemName:     e.MenuItemName.Value,
		Action:           model.ParseComponentAction(e.Action.Value),
		MenuItemQuantity: e.MenuItemQuantity.ptr(),
		LineIndex:        e.LineIndex.ptr(),
		SpecialRequest:   e.SpecialRequest.Value,
	}
}

// extractByPattern pulls each field independently so one broken field does not lose the rest.
func extractByPattern(body string, meta map[string]any) model.Interpretation {
	str := func(field string) string {
		m := fieldPatterns[field].FindStringSubmatch(body)
		if m == nil {
			return ""
		}
		v := strings.TrimSpace(m[1])
		if unq, err := unquoteJSON(v); err == nil {
			v = unq
		}
		if isAbsent(v) {
			return ""
		}
		return v
	}
	num := func(field string) *int {
		if v, ok := parseLeadingInt(str(field)); ok {
			return &v
		}
		return nil
	}

	meta["fallback_fields"] = true
	return model.Interpretation{
		Intent: model.ParseIntent(str("intent")),
		Entities: model.EntityBag{
			MenuName:         str("menuName"),
			StyleName:        str("styleName"),
			Quantity:         num("quantity"),
			AddressIndex:     num("addressIndex"),
			MenuItemName:     str("menuItemName"),
			Action:           model.ParseComponentAction(str("action")),
			MenuItemQuantity: num("menuItemQuantity"),
			LineIndex:        num("lineIndex"),
			SpecialRequest:   str("specialRequest"),
		},
		Message:         str("message"),
		ParsingMetadata: meta,
	}
}

func unquoteJSON(s string) (string, error) {
	var out string
	err := json.Unmarshal([]byte(`"`+s+`"`), &out)
	return out, err
}

// --- helpers ---

func safeSnippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxErrSnippet {
		return s
	}
	return strings.ToValidUTF8(s[:maxErrSnippet], "")
}
