package services

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"service-crm/internal/dto"
	"service-crm/internal/entities"
	"service-crm/internal/repositories"
	apperrors "service-crm/pkg/errors"
)

// Лимит строк одной выгрузки в Excel.
const reportExportLimit = 100000

const reportSheet = "Отчет по заявкам"

var reportHeaders = []string{
	"№", "ID заявки", "Дата создания", "Клиент", "Телефон", "Адрес",
	"Статус", "Менеджер", "Черный список", "Дата закрытия",
}

type ReportServiceInterface interface {
	GetReport(ctx context.Context, filter dto.ReportFilterDTO) ([]entities.ReportItem, uint64, error)
	ExportXLSX(ctx context.Context, filter dto.ReportFilterDTO) (*excelize.File, error)
}

type reportService struct {
	reportRepo repositories.ReportRepositoryInterface
	logger     *zap.Logger
}

func NewReportService(reportRepo repositories.ReportRepositoryInterface, logger *zap.Logger) ReportServiceInterface {
	return &reportService{reportRepo: reportRepo, logger: logger}
}

func (s *reportService) GetReport(ctx context.Context, filter dto.ReportFilterDTO) ([]entities.ReportItem, uint64, error) {
	f, err := toReportFilter(filter)
	if err != nil {
		return nil, 0, err
	}
	return s.reportRepo.GetReport(ctx, f)
}

func (s *reportService) ExportXLSX(ctx context.Context, filter dto.ReportFilterDTO) (*excelize.File, error) {
	f, err := toReportFilter(filter)
	if err != nil {
		return nil, err
	}
	f.Page = 1
	f.PerPage = reportExportLimit

	items, total, err := s.reportRepo.GetReport(ctx, f)
	if err != nil {
		return nil, err
	}
	if total > reportExportLimit {
		s.logger.Warn("выгрузка отчета обрезана", zap.Uint64("total", total), zap.Int("limit", reportExportLimit))
	}
	return buildReportFile(items)
}

// toReportFilter: date_to включает весь указанный день.
func toReportFilter(in dto.ReportFilterDTO) (entities.ReportFilter, error) {
	out := entities.ReportFilter{
		Statuses:   in.Statuses,
		ManagerIDs: in.ManagerIDs,
		Page:       in.Page,
		PerPage:    in.PerPage,
	}
	if in.DateFrom != "" {
		t, err := time.Parse(time.DateOnly, in.DateFrom)
		if err != nil {
			return out, apperrors.NewInvalidInputError("некорректная дата date_from: %s", in.DateFrom)
		}
		out.DateFrom = &t
	}
	if in.DateTo != "" {
		t, err := time.Parse(time.DateOnly, in.DateTo)
		if err != nil {
			return out, apperrors.NewInvalidInputError("некорректная дата date_to: %s", in.DateTo)
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		out.DateTo = &end
	}
	if out.DateFrom != nil && out.DateTo != nil && out.DateTo.Before(*out.DateFrom) {
		return out, apperrors.NewInvalidInputError("date_to раньше date_from")
	}
	return out, nil
}

func reportRow(n int, item entities.ReportItem) []interface{} {
	const dateTimeFmt = "02.01.2006 15:04"
	var closedAt string
	if item.ClosedAt.Valid {
		closedAt = item.ClosedAt.Time.Format(dateTimeFmt)
	}
	blacklisted := "нет"
	if item.IsBlacklisted {
		blacklisted = "да"
	}
	return []interface{}{
		n, item.OrderID.String(), item.CreatedAt.Format(dateTimeFmt), item.ClientName, item.Phone,
		item.Address, item.StatusName, item.ManagerFio.String, blacklisted, closedAt,
	}
}

func buildReportFile(items []entities.ReportItem) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return nil, fmt.Errorf("ошибка подготовки листа: %w", err)
	}
	if err := f.SetSheetRow(reportSheet, "A1", &reportHeaders); err != nil {
		return nil, fmt.Errorf("ошибка записи заголовка: %w", err)
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetCellStyle(reportSheet, "A1", "J1", style)
	}

	for i, item := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := reportRow(i+1, item)
		if err := f.SetSheetRow(reportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("ошибка записи строки %d: %w", i+1, err)
		}
	}
	_ = f.SetColWidth(reportSheet, "B", "B", 38)
	_ = f.SetColWidth(reportSheet, "C", "E", 20)
	_ = f.SetColWidth(reportSheet, "F", "F", 45)
	_ = f.SetColWidth(reportSheet, "G", "J", 20)

	return f, nil
}
