package repository

import (
	"github.com/architect/commerce-analytics/internal/common/database"
	"github.com/architect/commerce-analytics/internal/common/errors"
	"github.com/architect/commerce-analytics/internal/dataset/models"
)

// Migrate creates the transactions table
func Migrate() error {
	if err := database.DB.AutoMigrate(&models.TransactionRecord{}); err != nil {
		return errors.Internal("failed to migrate transactions table", err.Error())
	}
	return nil
}

// SaveTransactions persists all rows of an uploaded dataset in one batch
func SaveTransactions(rows []models.TransactionRecord) error {
	if len(rows) == 0 {
		return nil
	}

	result := database.DB.CreateInBatches(rows, 500)
	if result.Error != nil {
		return errors.Internal("failed to save transactions", result.Error.Error())
	}
	return nil
}

// GetTransactions loads a dataset's rows in their stored order
func GetTransactions(datasetID string) ([]models.TransactionRecord, error) {
	var rows []models.TransactionRecord

	result := database.DB.
		Where("dataset_id = ?", datasetID).
		Order("customer_id, order_date, id").
		Find(&rows)

	if result.Error != nil {
		return nil, errors.Internal("failed to fetch transactions", result.Error.Error())
	}

	return rows, nil
}

// ListDatasetIDs returns the distinct dataset IDs present in storage
func ListDatasetIDs() ([]string, error) {
	var ids []string

	result := database.DB.Model(&models.TransactionRecord{}).
		Distinct("dataset_id").
		Pluck("dataset_id", &ids)

	if result.Error != nil {
		return nil, errors.Internal("failed to list datasets", result.Error.Error())
	}

	return ids, nil
}

// DeleteTransactions removes a dataset's rows
func DeleteTransactions(datasetID string) error {
	result := database.DB.
		Where("dataset_id = ?", datasetID).
		Delete(&models.TransactionRecord{})

	if result.Error != nil {
		return errors.Internal("failed to delete transactions", result.Error.Error())
	}
	return nil
}
