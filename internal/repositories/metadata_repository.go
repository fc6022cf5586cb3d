package repositories

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/lib/pq"

	"physioplan/internal/apperrors"
	"physioplan/internal/models"
)

type MetaDataRepository interface {
	GetByName(dataName string) (*models.MetaData, error)
}

type metaDataRepository struct {
	db *sql.DB
}

func NewMetaDataRepository(db *sql.DB) MetaDataRepository {
	if db == nil {
		log.Fatalf("received nil database connection")
	}
	return &metaDataRepository{db: db}
}

func (r *metaDataRepository) GetByName(dataName string) (*models.MetaData, error) {
	const query = `SELECT id, data_name, data FROM meta_data WHERE data_name=$1`
	m := &models.MetaData{}
	err := r.db.QueryRow(query, dataName).Scan(&m.ID, &m.DataName, pq.Array(&m.Data))
	if err == sql.ErrNoRows {
		return nil, apperrors.Newf(apperrors.NotFound, "%s not available", dataName)
	}
	if err != nil {
		return nil, fmt.Errorf("meta_data get: %w", err)
	}
	return m, nil
}
