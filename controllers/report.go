package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"salonspa-backend/services"
	"salonspa-backend/utils"
)

// ReportController handles all reporting functions
type ReportController struct {
	reports *services.ReportService
	log     *zap.Logger
}

func NewReportController(reports *services.ReportService, log *zap.Logger) *ReportController {
	return &ReportController{reports: reports, log: log.Named("report.controller")}
}

// GetSalesReport returns revenue, top items and invoice statistics for a store
func (rc *ReportController) GetSalesReport(c *gin.Context) {
	storeID := storeFromContext(c)
	if raw := c.Query("storeId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid storeId")
			return
		}
		storeID = uint(id)
	}
	if storeID == 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "storeId is required")
		return
	}

	report, err := rc.reports.Sales(c.Request.Context(), storeID, time.Now().UTC())
	if err != nil {
		respondServiceError(c, rc.log, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
