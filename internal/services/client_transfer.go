package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"helpdesk-core/internal/dto"
	"helpdesk-core/internal/entities"
	"helpdesk-core/internal/query"
	apperrors "helpdesk-core/pkg/errors"
	"helpdesk-core/pkg/types"
)

const clientSheet = "Клиенты"

var clientHeaders = []interface{}{"ID", "Имя", "Email", "Телефон", "Компания", "Статус", "Теги", "Заявок", "Рейтинг", "Создан"}

// колонки импорта: допустимые подписи в шапке (в нижнем регистре)
var importColumns = map[string][]string{
	"name":    {"имя", "name", "клиент"},
	"email":   {"email", "e-mail", "почта"},
	"phone":   {"телефон", "phone"},
	"company": {"компания", "company", "организация"},
	"status":  {"статус", "status"},
	"tags":    {"теги", "tags"},
}

// Import загружает клиентов из XLSX. Первая строка с колонками "Имя" и
// "Email" считается шапкой. Строки с ошибками и повторными email
// пропускаются и перечисляются в результате.
func (s *ClientService) Import(ctx context.Context, r io.Reader) types.Response[dto.ClientImportResultDTO] {
	return run(&s.BaseService, "Не удалось импортировать клиентов", apperrors.CodeClientImport, func() (dto.ClientImportResultDTO, error) {
		f, err := excelize.OpenReader(r)
		if err != nil {
			return dto.ClientImportResultDTO{}, apperrors.New(apperrors.CodeClientImport, "файл не является корректным XLSX", err)
		}
		defer f.Close()

		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return dto.ClientImportResultDTO{}, apperrors.New(apperrors.CodeClientImport, "в файле нет листов", nil)
		}
		rows, err := f.GetRows(sheets[0])
		if err != nil {
			return dto.ClientImportResultDTO{}, apperrors.New(apperrors.CodeClientImport, "не удалось прочитать лист", err)
		}

		headerRow, columns := findImportHeader(rows)
		if headerRow < 0 {
			return dto.ClientImportResultDTO{}, apperrors.New(apperrors.CodeClientImport, "не найдена шапка с колонками «Имя» и «Email»", nil)
		}

		existing, err := s.clients.All(ctx)
		if err != nil {
			return dto.ClientImportResultDTO{}, err
		}
		seen := make(map[string]bool, len(existing))
		for _, c := range existing {
			seen[strings.ToLower(c.Email)] = true
		}

		result := dto.ClientImportResultDTO{Errors: []dto.ImportRowError{}}
		for i := headerRow + 1; i < len(rows); i++ {
			row := rows[i]
			line := i + 1
			in := dto.CreateClientDTO{
				Name:    cell(row, columns["name"]),
				Email:   cell(row, columns["email"]),
				Phone:   cell(row, columns["phone"]),
				Company: cell(row, columns["company"]),
				Status:  strings.ToLower(cell(row, columns["status"])),
				Tags:    splitTags(cell(row, columns["tags"])),
			}
			if in.Name == "" && in.Email == "" {
				continue
			}
			if err := s.validate(in); err != nil {
				result.Skipped++
				result.Errors = append(result.Errors, dto.ImportRowError{Row: line, Message: err.Error()})
				continue
			}
			key := strings.ToLower(in.Email)
			if seen[key] {
				result.Skipped++
				result.Errors = append(result.Errors, dto.ImportRowError{Row: line, Message: "клиент с email " + in.Email + " уже существует"})
				continue
			}

			now := s.now()
			if _, err := s.clients.Insert(ctx, func(nextID string, _ []entities.Client) (entities.Client, error) {
				return s.newClient(in, nextID, now), nil
			}); err != nil {
				if errors.Is(err, apperrors.ErrInvalidInput) {
					result.Skipped++
					result.Errors = append(result.Errors, dto.ImportRowError{Row: line, Message: err.Error()})
					continue
				}
				return result, err
			}
			seen[key] = true
			result.Imported++
		}

		s.logger.Info("Импорт клиентов завершён", zap.Int("imported", result.Imported), zap.Int("skipped", result.Skipped))
		return result, nil
	})
}

func findImportHeader(rows [][]string) (int, map[string]int) {
	for r, row := range rows {
		columns := map[string]int{"name": -1, "email": -1, "phone": -1, "company": -1, "status": -1, "tags": -1}
		for c, title := range row {
			title = strings.ToLower(strings.TrimSpace(title))
			for field, aliases := range importColumns {
				for _, alias := range aliases {
					if title == alias && columns[field] < 0 {
						columns[field] = c
					}
				}
			}
		}
		if columns["name"] >= 0 && columns["email"] >= 0 {
			return r, columns
		}
	}
	return -1, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func splitTags(raw string) []string {
	var tags []string
	for _, t := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' }) {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Export пишет в w XLSX со всеми клиентами, подходящими под фильтр
// (без пагинации), и возвращает их число.
func (s *ClientService) Export(ctx context.Context, filter dto.ClientFilter, w io.Writer) types.Response[int] {
	return run(&s.BaseService, "Не удалось выгрузить клиентов", apperrors.CodeClientExport, func() (int, error) {
		items, err := s.clients.All(ctx)
		if err != nil {
			return 0, err
		}
		items = query.Sort(query.Filter(items, clientPredicates(filter)...), filter.Sort, clientSorters)

		f := excelize.NewFile()
		defer f.Close()
		if err := f.SetSheetName("Sheet1", clientSheet); err != nil {
			return 0, err
		}
		if err := f.SetSheetRow(clientSheet, "A1", &clientHeaders); err != nil {
			return 0, err
		}
		if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
			_ = f.SetCellStyle(clientSheet, "A1", "J1", style)
		}

		for i, c := range items {
			addr, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return 0, err
			}
			row := []interface{}{
				c.ID, c.Name, c.Email, c.Phone, c.Company, c.Status,
				strings.Join(c.Tags, ", "), c.TicketsCount, c.Rating,
				c.CreatedAt.Format("2006-01-02 15:04"),
			}
			if err := f.SetSheetRow(clientSheet, addr, &row); err != nil {
				return 0, err
			}
		}
		_ = f.SetColWidth(clientSheet, "B", "C", 30)
		_ = f.SetColWidth(clientSheet, "E", "E", 30)

		if err := f.Write(w); err != nil {
			return 0, fmt.Errorf("ошибка записи XLSX: %w", err)
		}
		return len(items), nil
	})
}
