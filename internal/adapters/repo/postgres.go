package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tsi-schedule-bot/internal/domain"
	"tsi-schedule-bot/internal/infra/metrics"
)

const component = "postgres"

// Postgres хранит привязки студентов к группам и список доступных групп.
type Postgres struct {
	pool *pgxpool.Pool
}

var (
	_ domain.StudentRepo    = (*Postgres)(nil)
	_ domain.GroupDirectory = (*Postgres)(nil)
)

// NewPostgres создаёт репозиторий.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func connCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 5*time.Second)
}

// Group возвращает сохранённую группу студента. Пустая строка без
// ошибки означает, что группа ещё не выбрана.
func (p *Postgres) Group(ctx context.Context, chatID int64) (group string, err error) {
	start := time.Now()
	defer func() { metrics.ObserveNetworkRequest(component, "student_group", "students", start, err) }()

	ctx, cancel := connCtx(ctx)
	defer cancel()

	err = p.pool.QueryRow(ctx,
		`SELECT group_number FROM students WHERE chat_id = $1`, chatID,
	).Scan(&group)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("чтение группы студента: %w", err)
	}
	return group, nil
}

// SetGroup сохраняет или обновляет группу студента.
func (p *Postgres) SetGroup(ctx context.Context, chatID int64, group string) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveNetworkRequest(component, "set_group", "students", start, err) }()

	ctx, cancel := connCtx(ctx)
	defer cancel()

	_, err = p.pool.Exec(ctx,
		`INSERT INTO students (chat_id, group_number) VALUES ($1, $2)
		 ON CONFLICT (chat_id) DO UPDATE SET group_number = EXCLUDED.group_number`,
		chatID, group)
	if err != nil {
		return fmt.Errorf("сохранение группы студента: %w", err)
	}
	return nil
}

// ReplaceGroups заменяет список доступных групп целиком.
func (p *Postgres) ReplaceGroups(ctx context.Context, names []string) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveNetworkRequest(component, "replace_groups", "groups", start, err) }()

	ctx, cancel := connCtx(ctx)
	defer cancel()

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("открытие транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err = tx.Exec(ctx, `DELETE FROM groups`); err != nil {
		return fmt.Errorf("очистка списка групп: %w", err)
	}
	for _, name := range names {
		if _, err = tx.Exec(ctx,
			`INSERT INTO groups (group_number) VALUES ($1)`, name); err != nil {
			return fmt.Errorf("вставка группы: %w", err)
		}
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("фиксация транзакции: %w", err)
	}
	return nil
}

// SearchGroups ищет группы по подстроке без учёта регистра.
func (p *Postgres) SearchGroups(ctx context.Context, term string) (names []string, err error) {
	start := time.Now()
	defer func() { metrics.ObserveNetworkRequest(component, "search_groups", "groups", start, err) }()

	ctx, cancel := connCtx(ctx)
	defer cancel()

	rows, err := p.pool.Query(ctx,
		`SELECT DISTINCT group_number FROM groups
		 WHERE group_number ILIKE '%' || $1 || '%'
		 ORDER BY group_number`, term)
	if err != nil {
		return nil, fmt.Errorf("поиск групп: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("чтение строки: %w", err)
		}
		names = append(names, name)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("обход результата: %w", err)
	}
	return names, nil
}
