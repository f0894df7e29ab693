package catalog

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/mozillazg/go-unidecode"

	"tsi-schedule-bot/internal/domain"
)

// TeacherEntry хранит пару из индекса преподавателей: оригинальное имя
// и его транслитерированная форма в нижнем регистре.
type TeacherEntry struct {
	Name     string
	Translit string
}

// Store хранит актуальный снимок справочника в памяти и даёт к нему
// конкурентный доступ. Снимок заменяется целиком, без частичных правок.
type Store struct {
	mu       sync.RWMutex
	snap     domain.CatalogSnapshot
	teachers []TeacherEntry
	revision uint64
}

// NewStore создаёт пустое хранилище справочника.
func NewStore() *Store {
	return &Store{}
}

// Get возвращает имя записи по категории и идентификатору.
func (s *Store) Get(cat domain.Category, id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var m map[string]string
	switch cat {
	case domain.CategoryRooms:
		m = s.snap.Rooms
	case domain.CategoryGroups:
		m = s.snap.Groups
	case domain.CategoryTeachers:
		m = s.snap.Teachers
	default:
		return "", false
	}
	name, ok := m[id]
	return name, ok
}

// FindIDByName ищет идентификатор по точному имени записи.
func (s *Store) FindIDByName(cat domain.Category, name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var m map[string]string
	switch cat {
	case domain.CategoryRooms:
		m = s.snap.Rooms
	case domain.CategoryGroups:
		m = s.snap.Groups
	case domain.CategoryTeachers:
		m = s.snap.Teachers
	default:
		return "", false
	}
	for id, n := range m {
		if n == name {
			return id, true
		}
	}
	return "", false
}

// Replace заменяет снимок целиком. Возвращает false, если новый снимок
// совпадает с текущим и замена не потребовалась.
func (s *Store) Replace(snap domain.CatalogSnapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.Equal(snap) {
		return false
	}
	s.snap = snap
	s.teachers = buildTeacherIndex(snap.Teachers)
	s.revision++
	return true
}

// TeacherIndex возвращает копию индекса преподавателей.
func (s *Store) TeacherIndex() []TeacherEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]TeacherEntry, len(s.teachers))
	copy(out, s.teachers)
	return out
}

// GroupNames возвращает имена всех групп, упорядоченные по идентификатору.
func (s *Store) GroupNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.snap.Groups))
	for id := range s.snap.Groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, s.snap.Groups[id])
	}
	return names
}

// Revision возвращает номер текущей ревизии снимка.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Snapshot возвращает копию текущего снимка.
func (s *Store) Snapshot() domain.CatalogSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CatalogSnapshot{
		Rooms:    maps.Clone(s.snap.Rooms),
		Groups:   maps.Clone(s.snap.Groups),
		Teachers: maps.Clone(s.snap.Teachers),
	}
}

// LoadFile загружает снимок из JSON файла и заменяет им текущий.
func (s *Store) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("чтение файла снимка: %w", err)
	}
	var snap domain.CatalogSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("разбор файла снимка: %w", err)
	}
	s.Replace(snap)
	return nil
}

// SaveFile сохраняет текущий снимок в JSON файл.
func (s *Store) SaveFile(path string) error {
	snap := s.Snapshot()
	data, err := json.MarshalIndent(snap, "", "    ")
	if err != nil {
		return fmt.Errorf("сериализация снимка: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("запись файла снимка: %w", err)
	}
	return nil
}

// buildTeacherIndex строит упорядоченный по идентификатору список
// преподавателей вместе с транслитерированными формами имён.
func buildTeacherIndex(teachers map[string]string) []TeacherEntry {
	ids := make([]string, 0, len(teachers))
	for id := range teachers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]TeacherEntry, 0, len(ids))
	for _, id := range ids {
		name := teachers[id]
		out = append(out, TeacherEntry{
			Name:     name,
			Translit: unidecode.Unidecode(strings.ToLower(name)),
		})
	}
	return out
}
