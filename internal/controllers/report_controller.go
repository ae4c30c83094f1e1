package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"service-crm/internal/dto"
	"service-crm/internal/services"
	"service-crm/pkg/types"
	"service-crm/pkg/utils"
)

type ReportController struct {
	reportService services.ReportServiceInterface
	logger        *zap.Logger
}

func NewReportController(reportService services.ReportServiceInterface, logger *zap.Logger) *ReportController {
	return &ReportController{reportService: reportService, logger: logger}
}

// GetReport: ?format=xlsx отдает файл вместо JSON.
func (c *ReportController) GetReport(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var filter dto.ReportFilterDTO
	if err := bindAndValidate(ctx, &filter); err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	c.logger.Debug("Запрос на отчет с фильтрами", zap.Any("filters", filter))

	if ctx.QueryParam("format") == "xlsx" {
		f, err := c.reportService.ExportXLSX(reqCtx, filter)
		if err != nil {
			return utils.ErrorResponse(ctx, err)
		}
		defer f.Close()

		fileName := fmt.Sprintf("report_%s.xlsx", time.Now().Format("2006-01-02"))
		ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		ctx.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+fileName)
		ctx.Response().WriteHeader(http.StatusOK)
		return f.Write(ctx.Response().Writer)
	}

	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PerPage == 0 {
		filter.PerPage = utils.DefaultLimit
	}
	data, total, err := c.reportService.GetReport(reqCtx, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.PaginatedResponse(ctx, data, types.NewPagination(total, filter.Page, filter.PerPage), "Отчет успешно сформирован")
}
