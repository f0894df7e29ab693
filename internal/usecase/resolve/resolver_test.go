package resolve

import (
	"errors"
	"reflect"
	"testing"

	"tsi-schedule-bot/internal/domain"
	"tsi-schedule-bot/internal/usecase/catalog"
)

func newTestResolver(t *testing.T, groups, teachers map[string]string) *Resolver {
	t.Helper()
	store := catalog.NewStore()
	store.Replace(domain.CatalogSnapshot{
		Rooms:    map[string]string{"1": "101"},
		Groups:   groups,
		Teachers: teachers,
	})
	return NewResolver(store)
}

func TestGroupFamily(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"1": "4201BDA",
		"2": "4203BDA",
		"3": "4301BDA",
		"4": "4201MDA",
		"5": "3201BDA",
	}, map[string]string{"9": "John Smith"})

	got, err := r.GroupFamily("4201BDA")
	if err != nil {
		t.Fatalf("GroupFamily: %v", err)
	}
	// Поток определяется второй цифрой и суффиксом: подходят x2..BDA,
	// в порядке идентификаторов справочника.
	want := []string{"4201BDA", "4203BDA", "3201BDA"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("GroupFamily = %v, want %v", got, want)
	}
}

func TestGroupFamilySingleDigit(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"1": "21BIT",
		"2": "22BIT",
	}, map[string]string{"9": "John Smith"})

	got, err := r.GroupFamily("2-BIT")
	if err != nil {
		t.Fatalf("GroupFamily: %v", err)
	}
	// Для одноцифровой числовой части шаблон вырождается до любой
	// первой цифры, подходят обе группы.
	want := []string{"21BIT", "22BIT"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("GroupFamily = %v, want %v", got, want)
	}
}

func TestGroupFamilyLastDigitRule(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"1": "21BIT",
		"2": "11BIT",
		"3": "31BIT",
		"4": "12MIT",
	}, map[string]string{"9": "John Smith"})

	got, err := r.GroupFamily("21-BIT")
	if err != nil {
		t.Fatalf("GroupFamily: %v", err)
	}
	// Фильтр строится по последней цифре числовой части: проходит
	// любая первая цифра, за которой идёт «1».
	want := []string{"21BIT", "11BIT", "31BIT"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("GroupFamily = %v, want %v", got, want)
	}
}

func TestGroupFamilyInvalidCode(t *testing.T) {
	r := newTestResolver(t, map[string]string{"1": "4201BDA"}, map[string]string{"9": "John Smith"})

	_, err := r.GroupFamily("BDA")
	var invalid *InvalidGroupPatternError
	if !errors.As(err, &invalid) {
		t.Fatalf("ожидалась InvalidGroupPatternError, получено %v", err)
	}
	if invalid.Code != "BDA" {
		t.Fatalf("Code = %q", invalid.Code)
	}
}

func TestMatchTeacherTopTies(t *testing.T) {
	r := newTestResolver(t, map[string]string{"1": "4201BDA"}, map[string]string{
		"5": "John Smith",
		"6": "Jane Smithson",
		"7": "Peter Brown",
	})

	// Обе фамилии делят максимальный балл: возвращаются обе, а не
	// произвольная одна.
	got, err := r.MatchTeacher("Smith")
	if err != nil {
		t.Fatalf("MatchTeacher: %v", err)
	}
	want := []string{"John Smith", "Jane Smithson"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MatchTeacher = %v, want %v", got, want)
	}
}

func TestMatchTeacherTranslit(t *testing.T) {
	r := newTestResolver(t, map[string]string{"1": "4201BDA"}, map[string]string{
		"5": "Jānis Bērziņš",
		"6": "Peter Brown",
	})

	got, err := r.MatchTeacher("janis")
	if err != nil {
		t.Fatalf("MatchTeacher: %v", err)
	}
	want := []string{"Jānis Bērziņš"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MatchTeacher = %v, want %v", got, want)
	}
}

func TestMatchTeacherNoMatch(t *testing.T) {
	r := newTestResolver(t, map[string]string{"1": "4201BDA"}, map[string]string{
		"5": "John Smith",
	})

	got, err := r.MatchTeacher("xyzqw")
	if err != nil {
		t.Fatalf("MatchTeacher: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("ожидался пустой результат, получено %v", got)
	}
}

func TestMatchTeachersInTextUnion(t *testing.T) {
	r := newTestResolver(t, map[string]string{"1": "4201BDA"}, map[string]string{
		"5": "John Smith",
		"6": "Peter Brown",
	})

	got, err := r.MatchTeachersInText("smith and brown")
	if err != nil {
		t.Fatalf("MatchTeachersInText: %v", err)
	}
	want := []string{"John Smith", "Peter Brown"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MatchTeachersInText = %v, want %v", got, want)
	}
}

func TestMatchTeacherEmptyIndex(t *testing.T) {
	r := newTestResolver(t, map[string]string{"1": "4201BDA"}, map[string]string{})

	if _, err := r.MatchTeacher("smith"); !errors.Is(err, ErrNoTeachers) {
		t.Fatalf("ожидалась ErrNoTeachers, получено %v", err)
	}
}
