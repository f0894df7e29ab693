package catalog

import (
	"path/filepath"
	"testing"

	"tsi-schedule-bot/internal/domain"
)

func testSnapshot() domain.CatalogSnapshot {
	return domain.CatalogSnapshot{
		Rooms:    map[string]string{"1": "101", "2": "202"},
		Groups:   map[string]string{"10": "4201BDA", "11": "4203BDA"},
		Teachers: map[string]string{"5": "John Smith", "6": "Jānis Bērziņš"},
	}
}

func TestStoreGetAndFind(t *testing.T) {
	s := NewStore()
	s.Replace(testSnapshot())

	name, ok := s.Get(domain.CategoryGroups, "10")
	if !ok || name != "4201BDA" {
		t.Fatalf("Get(groups, 10) = %q, %v", name, ok)
	}
	id, ok := s.FindIDByName(domain.CategoryGroups, "4201BDA")
	if !ok || id != "10" {
		t.Fatalf("FindIDByName(groups, 4201BDA) = %q, %v", id, ok)
	}
	if _, ok := s.Get(domain.CategoryRooms, "999"); ok {
		t.Fatal("Get по несуществующему id должен вернуть false")
	}
	if _, ok := s.FindIDByName(domain.CategoryTeachers, "Nobody"); ok {
		t.Fatal("FindIDByName по несуществующему имени должен вернуть false")
	}
}

func TestStoreReplaceIdempotent(t *testing.T) {
	s := NewStore()
	if !s.Replace(testSnapshot()) {
		t.Fatal("первая замена должна вернуть true")
	}
	rev := s.Revision()
	if s.Replace(testSnapshot()) {
		t.Fatal("замена на идентичный снимок должна вернуть false")
	}
	if s.Revision() != rev {
		t.Fatalf("ревизия изменилась без изменений снимка: %d != %d", s.Revision(), rev)
	}

	changed := testSnapshot()
	changed.Groups["12"] = "4205BDA"
	if !s.Replace(changed) {
		t.Fatal("замена на изменённый снимок должна вернуть true")
	}
	if s.Revision() != rev+1 {
		t.Fatalf("ревизия не выросла: %d", s.Revision())
	}
}

func TestStoreTeacherIndexOrder(t *testing.T) {
	s := NewStore()
	s.Replace(testSnapshot())

	idx := s.TeacherIndex()
	if len(idx) != 2 {
		t.Fatalf("ожидалось 2 записи, получено %d", len(idx))
	}
	if idx[0].Name != "John Smith" || idx[1].Name != "Jānis Bērziņš" {
		t.Fatalf("индекс не упорядочен по id: %+v", idx)
	}
	if idx[1].Translit != "janis berzins" {
		t.Fatalf("транслитерация: %q", idx[1].Translit)
	}
}

func TestStoreSaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.json")

	s := NewStore()
	s.Replace(testSnapshot())
	if err := s.SaveFile(path); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	restored := NewStore()
	if err := restored.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !restored.Snapshot().Equal(s.Snapshot()) {
		t.Fatal("снимок после загрузки отличается от сохранённого")
	}
}
