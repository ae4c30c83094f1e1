package services

import (
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-crm/internal/dto"
	"service-crm/internal/entities"
	"service-crm/pkg/constants"
	apperrors "service-crm/pkg/errors"
)

func TestToReportFilter(t *testing.T) {
	f, err := toReportFilter(dto.ReportFilterDTO{
		DateFrom: "2026-03-01",
		DateTo:   "2026-03-31",
		Statuses: []string{constants.StatusCompleted},
		Page:     2,
		PerPage:  50,
	})
	require.NoError(t, err)
	require.NotNil(t, f.DateFrom)
	require.NotNil(t, f.DateTo)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *f.DateFrom)
	assert.Equal(t, 31, f.DateTo.Day())
	assert.Equal(t, 23, f.DateTo.Hour())
	assert.Equal(t, []string{constants.StatusCompleted}, f.Statuses)

	_, err = toReportFilter(dto.ReportFilterDTO{DateFrom: "2026-03-10", DateTo: "2026-03-01"})
	assert.True(t, apperrors.IsInvalidInput(err))

	_, err = toReportFilter(dto.ReportFilterDTO{DateFrom: "01.03.2026"})
	assert.True(t, apperrors.IsInvalidInput(err))
}

func TestBuildReportFile(t *testing.T) {
	id := uuid.New()
	items := []entities.ReportItem{{
		OrderID:       id,
		CreatedAt:     time.Date(2026, 3, 5, 10, 30, 0, 0, time.UTC),
		ClientName:    "Иванов Иван",
		Phone:         "+79991234567",
		Address:       "Москва, Тверская, д. 1",
		Status:        constants.StatusCompleted,
		StatusName:    constants.StatusLabel(constants.StatusCompleted),
		IsBlacklisted: true,
		ClosedAt:      null.TimeFrom(time.Date(2026, 3, 6, 12, 0, 0, 0, time.UTC)),
	}}

	f, err := buildReportFile(items)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue(reportSheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "ID заявки", header)

	rows, err := f.GetRows(reportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, id.String(), rows[1][1])
	assert.Equal(t, "05.03.2026 10:30", rows[1][2])
	assert.Equal(t, "Исполнена", rows[1][6])
	assert.Equal(t, "да", rows[1][8])
	assert.Equal(t, "06.03.2026 12:00", rows[1][9])
}
