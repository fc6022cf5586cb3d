package services

import (
	"physioplan/internal/repositories"
)

type MetaDataService interface {
	GetPainTypes() ([]string, error)
	GetInjuryAreas() ([]string, error)
}

type metaDataService struct {
	repo repositories.MetaDataRepository
}

func NewMetaDataService(repo repositories.MetaDataRepository) MetaDataService {
	return &metaDataService{repo: repo}
}

func (s *metaDataService) GetPainTypes() ([]string, error) {
	m, err := s.repo.GetByName("pain_types")
	if err != nil {
		return nil, err
	}
	return m.Data, nil
}

func (s *metaDataService) GetInjuryAreas() ([]string, error) {
	m, err := s.repo.GetByName("injury_areas")
	if err != nil {
		return nil, err
	}
	return m.Data, nil
}
