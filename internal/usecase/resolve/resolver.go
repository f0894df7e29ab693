package resolve

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"tsi-schedule-bot/internal/usecase/catalog"
)

// matchScore — минимальный балл сходства фамилии или имени,
// при котором кандидат считается совпадением.
const matchScore = 70

var (
	// ErrNoTeachers возвращается, когда индекс преподавателей пуст.
	ErrNoTeachers = errors.New("справочник преподавателей пуст")

	groupPattern = regexp.MustCompile(`^(\d+)-?(\w+)`)
)

// InvalidGroupPatternError означает, что код группы не распознан.
type InvalidGroupPatternError struct {
	Code string
}

func (e *InvalidGroupPatternError) Error() string {
	return fmt.Sprintf("не удалось разобрать код группы %q", e.Code)
}

// Catalog описывает нужную резолверу часть справочника.
type Catalog interface {
	TeacherIndex() []catalog.TeacherEntry
	GroupNames() []string
}

// Resolver сопоставляет свободный текст с записями справочника:
// коды групп с их «семействами» и упоминания преподавателей с именами.
type Resolver struct {
	catalog Catalog
}

// NewResolver создаёт резолвер поверх справочника.
func NewResolver(catalog Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// GroupFamily возвращает имена всех групп, принадлежащих одному потоку
// с переданным кодом. Поток определяется второй цифрой числовой части
// и буквенным суффиксом кода.
func (r *Resolver) GroupFamily(code string) ([]string, error) {
	m := groupPattern.FindStringSubmatch(code)
	if m == nil {
		return nil, &InvalidGroupPatternError{Code: code}
	}
	numeric, suffix := m[1], m[2]
	// У одноцифровой числовой части второй цифры нет, и шаблон
	// вырождается до «любая первая цифра».
	digit := ""
	if len(numeric) >= 2 {
		digit = numeric[1:2]
	}
	family, err := regexp.Compile(`^\d` + digit + `.*` + regexp.QuoteMeta(suffix) + `$`)
	if err != nil {
		return nil, &InvalidGroupPatternError{Code: code}
	}

	var out []string
	for _, name := range r.catalog.GroupNames() {
		if family.MatchString(name) {
			out = append(out, name)
		}
	}
	return out, nil
}

// MatchTeacher находит преподавателей, лучше всего соответствующих
// токену. Возвращаются все кандидаты с максимальным баллом, если хотя бы
// фамилия или имя кандидата достаточно похожи на токен.
func (r *Resolver) MatchTeacher(token string) ([]string, error) {
	idx := r.catalog.TeacherIndex()
	if len(idx) == 0 {
		return nil, ErrNoTeachers
	}

	matched := matchBest(token, idx, func(e catalog.TeacherEntry) string { return e.Name })
	if translit := matchBest(token, idx, func(e catalog.TeacherEntry) string { return e.Translit }); len(translit) > 0 {
		matched = append(matched, translit...)
	}
	return dedupe(matched), nil
}

// MatchTeachersInText разбивает текст на токены по пробелам и собирает
// объединение совпадений по каждому токену.
func (r *Resolver) MatchTeachersInText(text string) ([]string, error) {
	var out []string
	for _, token := range strings.Fields(text) {
		names, err := r.MatchTeacher(token)
		if err != nil {
			return nil, err
		}
		out = append(out, names...)
	}
	return dedupe(out), nil
}

// matchBest ищет записи с максимальным баллом WRatio по выбранной форме
// имени и отсекает те, у которых ни первое, ни последнее слово формы не
// похоже на токен.
func matchBest(token string, idx []catalog.TeacherEntry, form func(catalog.TeacherEntry) string) []string {
	best := -1
	var top []catalog.TeacherEntry
	for _, e := range idx {
		score := fuzzy.WRatio(token, form(e))
		switch {
		case score > best:
			best = score
			top = top[:0]
			top = append(top, e)
		case score == best:
			top = append(top, e)
		}
	}

	var out []string
	for _, e := range top {
		fields := strings.Fields(form(e))
		if len(fields) == 0 {
			continue
		}
		first, last := fields[0], fields[len(fields)-1]
		if fuzzy.Ratio(token, first) > matchScore || fuzzy.Ratio(token, last) > matchScore {
			out = append(out, e.Name)
		}
	}
	return out
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	var out []string
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
