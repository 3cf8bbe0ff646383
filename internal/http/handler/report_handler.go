package handler

import (
	"net/http"

	"github.com/crumbhouse/bakery-api/internal/auth"
	"github.com/crumbhouse/bakery-api/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	reportService *service.ReportService
	logger        *zap.Logger
}

func NewReportHandler(reportService *service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// Sales godoc
// @Summary Sales report
// @Description Revenue excludes cancelled and returned orders. Unknown periods fall back to 7d.
// @Tags Reports
// @Produce json
// @Param period query string false "Window" Enums(7d, 30d, 90d, 12m, today, this_week, this_month, this_quarter, all_time) default(7d)
// @Success 200 {object} map[string]interface{} "{message, report}"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /reports/sales [get]
func (h *ReportHandler) Sales(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportService.Sales(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		respondServiceError(w, h.logger, err, "build sales report")
		return
	}
	respondEntity(w, http.StatusOK, "Sales report generated successfully", "report", report)
}

// Inventory godoc
// @Summary Inventory report
// @Tags Reports
// @Produce json
// @Param period query string false "Window for movement counts" default(7d)
// @Success 200 {object} map[string]interface{} "{message, report}"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /reports/inventory [get]
func (h *ReportHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportService.Inventory(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		respondServiceError(w, h.logger, err, "build inventory report")
		return
	}
	respondEntity(w, http.StatusOK, "Inventory report generated successfully", "report", report)
}

// Production godoc
// @Summary Production report
// @Tags Reports
// @Produce json
// @Param period query string false "Window" default(7d)
// @Success 200 {object} map[string]interface{} "{message, report}"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /reports/production [get]
func (h *ReportHandler) Production(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportService.Production(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		respondServiceError(w, h.logger, err, "build production report")
		return
	}
	respondEntity(w, http.StatusOK, "Production report generated successfully", "report", report)
}

// Deliveries godoc
// @Summary Delivery report
// @Tags Reports
// @Produce json
// @Param period query string false "Window" default(7d)
// @Success 200 {object} map[string]interface{} "{message, report}"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /reports/deliveries [get]
func (h *ReportHandler) Deliveries(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportService.Deliveries(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		respondServiceError(w, h.logger, err, "build delivery report")
		return
	}
	respondEntity(w, http.StatusOK, "Delivery report generated successfully", "report", report)
}

// Dashboard godoc
// @Summary Today's dashboard
// @Tags Reports
// @Produce json
// @Success 200 {object} map[string]interface{} "{message, report}"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /reports/dashboard [get]
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID := uuid.Nil
	if userCtx, ok := auth.FromContext(r.Context()); ok && !userCtx.System {
		userID = userCtx.UserID
	}

	report, err := h.reportService.Dashboard(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.logger, err, "build dashboard")
		return
	}
	respondEntity(w, http.StatusOK, "Dashboard generated successfully", "report", report)
}

// ExportSales godoc
// @Summary Export sales report
// @Description Downloads the sales report as an Excel workbook
// @Tags Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param period query string false "Window" default(7d)
// @Success 200 {file} file
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /reports/sales/export [get]
func (h *ReportHandler) ExportSales(w http.ResponseWriter, r *http.Request) {
	f, filename, err := h.reportService.ExportSales(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		respondServiceError(w, h.logger, err, "export sales report")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	w.Header().Set("Content-Transfer-Encoding", "binary")

	if err := f.Write(w); err != nil {
		h.logger.Error("failed to write sales workbook", zap.Error(err))
	}
}
