package schedule

import (
	"fmt"
	"strings"
	"time"

	"tsi-schedule-bot/internal/domain"
)

// FormatEvents превращает события в текстовые блоки: заголовок с датой
// для каждого нового дня и по блоку на событие. Блоки не разрывают
// события и склеиваются в сообщения выше по стеку.
func FormatEvents(events []domain.Event, catalog Catalog, loc *time.Location) []string {
	var blocks []string
	lastDate := ""
	for _, ev := range events {
		start := time.Unix(ev.Start, 0).UTC()
		dateString := start.Format("02.01.2006")
		timeString := start.In(loc).Format("15:04")

		room := "Not specified"
		if len(ev.RoomIDs) > 0 {
			if name, ok := catalog.Get(domain.CategoryRooms, ev.RoomIDs[0]); ok && name != "" {
				room = name
			}
		}

		var groupNames []string
		for _, id := range ev.GroupIDs {
			if name, ok := catalog.Get(domain.CategoryGroups, id); ok && name != "" {
				groupNames = append(groupNames, name)
			}
		}
		groups := "Not specified"
		if len(groupNames) > 0 {
			groups = strings.Join(groupNames, ", ")
		}

		teacher := "TBA"
		if name, ok := catalog.Get(domain.CategoryTeachers, ev.TeacherID); ok && strings.TrimSpace(name) != "" {
			teacher = strings.TrimSpace(name)
		}

		if dateString != lastDate {
			lastDate = dateString
			blocks = append(blocks, fmt.Sprintf("%s\n\n", dateString))
		}
		blocks = append(blocks, fmt.Sprintf("%s with %s\nRoom: %s\nGroups: %s\nTime: %s\n\n",
			strings.TrimSpace(ev.Title), teacher, room, groups, timeString))
	}
	return blocks
}
