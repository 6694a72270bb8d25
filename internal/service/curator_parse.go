package service

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"art-advisor/internal/domain"
)

// UntitledPlaceholder reemplaza titulos ausentes o invalidos.
const UntitledPlaceholder = "Sem título"

const maxTitleRunes = 200

var (
	fenceStart = regexp.MustCompile("(?is)^\\s*```(?:json)?\\s*")
	fenceEnd   = regexp.MustCompile("(?is)\\s*```\\s*$")

	selectionValidator = validator.New()
)

type curatorEnvelope struct {
	Artworks *[]json.RawMessage `json:"artworks"`
	Obras    *[]json.RawMessage `json:"obras"`
}

// curatorItem guarda cada campo crudo: un tipo equivocado en un item no debe
// tumbar el lote entero.
type curatorItem struct {
	Index  json.RawMessage `json:"index"`
	URL    json.RawMessage `json:"url"`
	Title  json.RawMessage `json:"title"`
	Titulo json.RawMessage `json:"titulo"`
	Tags   json.RawMessage `json:"tags"`
}

// parseCuratorResponse valida la respuesta del modelo contra el pool enviado.
// Un objeto ilegible o sin lista de obras es fallo; cada item se decodifica por
// separado, sus campos se corrigen y las referencias que no resuelven se descartan.
func parseCuratorResponse(raw string, pool []domain.Candidate, maxOut int) ([]domain.Selection, error) {
	cleaned := stripCodeFences(raw)
	obj := firstJSONObject(cleaned)
	if obj == "" {
		return nil, fmt.Errorf("%w: no JSON object in curator response", domain.ErrCurationFailed)
	}

	var env curatorEnvelope
	if err := json.Unmarshal([]byte(obj), &env); err != nil {
		return nil, fmt.Errorf("%w: decode curator response: %w", domain.ErrCurationFailed, err)
	}
	var items []json.RawMessage
	switch {
	case env.Artworks != nil:
		items = *env.Artworks
	case env.Obras != nil:
		items = *env.Obras
	default:
		return nil, fmt.Errorf("%w: curator response has no artworks list", domain.ErrCurationFailed)
	}

	byURL := make(map[string]int, len(pool))
	for i, c := range pool {
		if _, ok := byURL[c.ImageURL]; !ok {
			byURL[c.ImageURL] = i
		}
	}

	used := make(map[int]struct{}, len(items))
	selections := make([]domain.Selection, 0, min(len(items), maxOut))
	for _, rawItem := range items {
		if len(selections) >= maxOut {
			break
		}
		var item curatorItem
		if err := json.Unmarshal(rawItem, &item); err != nil {
			continue
		}
		idx, ok := resolveReference(item, len(pool), byURL)
		if !ok {
			continue
		}
		if _, dup := used[idx]; dup {
			continue
		}
		used[idx] = struct{}{}

		selections = append(selections, domain.Selection{
			Candidate: pool[idx],
			Title:     normalizeTitle(firstNonEmpty(rawString(item.Title), rawString(item.Titulo))),
			Tags:      normalizeSelectionTags(item.Tags),
		})
	}
	return selections, nil
}

func resolveReference(item curatorItem, size int, byURL map[string]int) (int, bool) {
	if len(item.Index) > 0 && string(item.Index) != "null" {
		idx, ok := rawIndex(item.Index)
		if !ok || idx < 0 || idx >= size {
			return 0, false
		}
		return idx, true
	}
	if u := strings.TrimSpace(rawString(item.URL)); u != "" {
		idx, ok := byURL[u]
		return idx, ok
	}
	return 0, false
}

// rawIndex acepta 3, 3.0 o "3"; cualquier otra cosa no resuelve.
func rawIndex(raw json.RawMessage) (int, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, false
		}
		n, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// rawString devuelve el texto si el campo es un string JSON, o vacio.
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return ""
	}
	return text
}

func normalizeTitle(title string) string {
	title = strings.Join(strings.Fields(title), " ")
	if selectionValidator.Var(title, "required") != nil {
		return UntitledPlaceholder
	}
	if utf8.RuneCountInString(title) > maxTitleRunes {
		title = string([]rune(title)[:maxTitleRunes])
	}
	return title
}

// normalizeSelectionTags acepta lista o texto separado por comas y devuelve
// exactamente 3 tags limpios, o ninguno.
func normalizeSelectionTags(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		var joined string
		if err := json.Unmarshal(raw, &joined); err != nil {
			return []string{}
		}
		list = strings.Split(joined, ",")
	}

	tags := domain.NormalizeTags(list)
	if selectionValidator.Var(tags, "len=3,dive,required,excludesall=0x2C") != nil {
		return []string{}
	}
	return tags
}

func stripCodeFences(raw string) string {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "\uFEFF")
	s = fenceStart.ReplaceAllString(s, "")
	s = fenceEnd.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// firstJSONObject devuelve el primer objeto JSON balanceado, respetando strings.
func firstJSONObject(input string) string {
	start := strings.IndexByte(input, '{')
	if start == -1 {
		return ""
	}
	inString, escape, depth := false, false, 0
	for i := start; i < len(input); i++ {
		ch := input[i]
		if inString {
			switch {
			case escape:
				escape = false
			case ch == '\\':
				escape = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
