package handlers

import (
	"io"
	"net/http"
	"strconv"

	analytics "github.com/architect/commerce-analytics/internal/analytics/services"
	"github.com/architect/commerce-analytics/internal/common/middleware"
	"github.com/architect/commerce-analytics/internal/dataset/services"
	"github.com/gin-gonic/gin"
)

// UploadDataset loads a CSV transaction log
// POST /api/v1/datasets
func UploadDataset(c *gin.Context) {
	var reader io.Reader

	file, _, err := c.Request.FormFile("file")
	if err == nil {
		defer file.Close()
		reader = file
	} else {
		// Raw CSV body
		reader = c.Request.Body
	}

	name := c.DefaultQuery("name", "upload")

	ds, warnings, err := services.LoadCSV(reader, name)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	if err := services.RegisterDataset(ds); err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"dataset_id": ds.ID,
		"records":    len(ds.Rows),
		"warnings":   warnings,
	})
}

// GenerateSample creates a synthetic demo dataset
// POST /api/v1/datasets/sample?records=1000
func GenerateSample(c *gin.Context) {
	records := 1000
	if n, err := strconv.Atoi(c.DefaultQuery("records", "1000")); err == nil && n > 0 && n <= 100000 {
		records = n
	}

	ds, warnings, err := services.GenerateSample(records)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	if err := services.RegisterDataset(ds); err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"dataset_id": ds.ID,
		"records":    len(ds.Rows),
		"warnings":   warnings,
	})
}

// ListDatasets returns all loaded datasets
// GET /api/v1/datasets
func ListDatasets(c *gin.Context) {
	c.JSON(http.StatusOK, services.ListDatasets())
}

// GetSummary returns overview statistics for a dataset
// GET /api/v1/datasets/:id/summary
func GetSummary(c *gin.Context) {
	ds, err := services.GetDataset(c.Param("id"))
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, services.Summarize(ds))
}

// DeleteDataset removes a dataset from memory and storage
// DELETE /api/v1/datasets/:id
func DeleteDataset(c *gin.Context) {
	id := c.Param("id")
	if err := services.RemoveDataset(id); err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	analytics.InvalidateDataset(id)

	c.JSON(http.StatusOK, gin.H{"message": "dataset deleted"})
}
