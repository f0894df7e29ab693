package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"tsi-schedule-bot/internal/adapters/telegram"
	"tsi-schedule-bot/internal/domain"
	"tsi-schedule-bot/internal/infra/metrics"
	"tsi-schedule-bot/internal/usecase/resolve"
	"tsi-schedule-bot/internal/usecase/timeframe"
)

var (
	// ErrNoGroup возвращается, когда группа не указана ни в сообщении,
	// ни в профиле студента.
	ErrNoGroup = errors.New("группа не указана")

	// ErrUpstream возвращается, когда ответ API не содержит ни событий,
	// ни сообщения об ошибке.
	ErrUpstream = errors.New("некорректный ответ API расписания")
)

// GroupNotFoundError означает, что названная группа отсутствует в справочнике.
type GroupNotFoundError struct {
	Group string
}

func (e *GroupNotFoundError) Error() string {
	return fmt.Sprintf("группа %q не найдена в справочнике", e.Group)
}

// InvalidGroupError означает, что код группы не удалось разобрать.
type InvalidGroupError struct {
	Group string
}

func (e *InvalidGroupError) Error() string {
	return fmt.Sprintf("некорректный код группы %q", e.Group)
}

// Report — готовый к отправке ответ на запрос расписания. Chunks
// упорядочены и каждый укладывается в лимит одного сообщения.
type Report struct {
	Chunks []string
}

// Catalog описывает нужную сервису часть справочника.
type Catalog interface {
	Get(cat domain.Category, id string) (string, bool)
	FindIDByName(cat domain.Category, name string) (string, bool)
}

// Service обрабатывает запрос расписания: разбирает период, находит
// группы и преподавателей, запрашивает события и формирует ответ.
type Service struct {
	catalog       Catalog
	resolver      *resolve.Resolver
	students      domain.StudentRepo
	api           domain.EventsAPI
	display       *time.Location
	defaultOffset *time.Location
	lang          string
	log           zerolog.Logger
}

// NewService создаёт сервис расписания.
func NewService(
	catalog Catalog,
	resolver *resolve.Resolver,
	students domain.StudentRepo,
	api domain.EventsAPI,
	display *time.Location,
	defaultOffset *time.Location,
	lang string,
	logger zerolog.Logger,
) *Service {
	return &Service{
		catalog:       catalog,
		resolver:      resolver,
		students:      students,
		api:           api,
		display:       display,
		defaultOffset: defaultOffset,
		lang:          lang,
		log:           logger,
	}
}

// Check выполняет полный цикл запроса расписания для сообщения text
// с параметрами интента params.
func (s *Service) Check(ctx context.Context, chatID int64, text string, params map[string]any) (Report, error) {
	metrics.IncScheduleRequest(chatID)

	span, err := timeframe.Parse(params, time.Now().In(s.defaultOffset))
	if err != nil {
		return Report{}, err
	}

	teacherNames, err := s.resolver.MatchTeachersInText(text)
	if err != nil && !errors.Is(err, resolve.ErrNoTeachers) {
		return Report{}, fmt.Errorf("поиск преподавателей: %w", err)
	}

	groupText, _ := params["group-text"].(string)
	if groupText == "" {
		groupText, err = s.students.Group(ctx, chatID)
		if err != nil {
			return Report{}, fmt.Errorf("группа студента: %w", err)
		}
	}
	if groupText == "" {
		return Report{}, ErrNoGroup
	}

	groupID, ok := s.catalog.FindIDByName(domain.CategoryGroups, groupText)
	if !ok {
		return Report{}, &GroupNotFoundError{Group: groupText}
	}

	family, err := s.resolver.GroupFamily(groupText)
	if err != nil {
		return Report{}, &InvalidGroupError{Group: groupText}
	}

	var groupIDs []string
	for _, name := range family {
		if id, ok := s.catalog.FindIDByName(domain.CategoryGroups, name); ok {
			groupIDs = append(groupIDs, id)
		}
	}
	var teacherIDs []string
	for _, name := range teacherNames {
		if id, ok := s.catalog.FindIDByName(domain.CategoryTeachers, name); ok {
			teacherIDs = append(teacherIDs, id)
		}
	}

	from, to := span.Epochs()
	result, err := s.api.FetchEvents(ctx, domain.ResolvedQuery{
		From:       from,
		To:         to,
		GroupIDs:   groupIDs,
		TeacherIDs: teacherIDs,
		Lang:       s.lang,
	})
	if err != nil {
		return Report{}, fmt.Errorf("запрос событий: %w", err)
	}

	chunks := []string{span.Describe()}

	if !result.HasEvents {
		if result.Message != "" {
			return Report{Chunks: append(chunks, result.Message)}, nil
		}
		return Report{}, ErrUpstream
	}

	// Оставляем только события запрошенной группы, сужение после
	// широкого запроса по потоку.
	var filtered []domain.Event
	for _, ev := range result.Events {
		for _, id := range ev.GroupIDs {
			if id == groupID {
				filtered = append(filtered, ev)
				break
			}
		}
	}

	blocks := FormatEvents(filtered, s.catalog, s.display)
	if len(blocks) == 0 {
		chunks = append(chunks, fmt.Sprintf("No events found for group %s.", groupText))
		return Report{Chunks: chunks}, nil
	}

	chunks = append(chunks, telegram.PackBlocks(blocks, telegram.MessageLimit)...)
	return Report{Chunks: chunks}, nil
}
