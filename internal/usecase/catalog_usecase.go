package usecase

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"motiv8/internal/domain/entity"
	"motiv8/internal/domain/repository"
	"motiv8/pkg/errors"
	"motiv8/pkg/logger"
)

var templateValidator = validator.New()

type CatalogUseCase struct {
	catalogRepo repository.MissionCatalogRepository
	log         logger.Logger
}

func NewCatalogUseCase(catalogRepo repository.MissionCatalogRepository, log logger.Logger) *CatalogUseCase {
	return &CatalogUseCase{
		catalogRepo: catalogRepo,
		log:         log,
	}
}

type ImportResult struct {
	Count  int      `json:"count"`
	IDs    []string `json:"ids"`
	DryRun bool     `json:"dryRun"`
}

// ValidateTemplate checks the field rules plus the active window ordering.
func ValidateTemplate(t *entity.MissionTemplate) error {
	if err := templateValidator.Struct(t); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
			}
			return errors.BadRequest("Invalid mission template: "+strings.Join(fields, ", "), err)
		}
		return errors.BadRequest("Invalid mission template", err)
	}

	if w := t.ActiveWindow; w != nil && !w.Start.IsZero() && !w.End.IsZero() && !w.Start.Before(w.End) {
		return errors.BadRequest("Active window start must be before its end", nil)
	}

	return nil
}

// ParseCatalog decodes a YAML or JSON catalog: either a bare list of
// templates or a document with a top-level "missions" list. Every entry is
// validated and missing IDs are generated.
func ParseCatalog(data []byte) ([]entity.MissionTemplate, error) {
	var templates []entity.MissionTemplate
	if err := yaml.Unmarshal(data, &templates); err != nil {
		var wrapper struct {
			Missions []entity.MissionTemplate `yaml:"missions"`
		}
		if wrapErr := yaml.Unmarshal(data, &wrapper); wrapErr != nil {
			return nil, errors.BadRequest("Catalog is not valid YAML or JSON", err)
		}
		templates = wrapper.Missions
	}

	if len(templates) == 0 {
		return nil, errors.BadRequest("Catalog contains no missions", nil)
	}

	seen := make(map[string]bool, len(templates))
	for i := range templates {
		t := &templates[i]
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if seen[t.ID] {
			return nil, errors.BadRequest(fmt.Sprintf("Duplicate mission id %q", t.ID), nil)
		}
		seen[t.ID] = true

		if err := ValidateTemplate(t); err != nil {
			return nil, errors.BadRequest(fmt.Sprintf("Mission %d (%s): %s", i+1, t.ID, err.(*errors.AppError).Message), err)
		}
	}

	return templates, nil
}

func (uc *CatalogUseCase) ListCatalog(ctx context.Context) ([]entity.MissionTemplate, error) {
	templates, err := uc.catalogRepo.List(ctx)
	if err != nil {
		return nil, storageError("load mission catalog", err)
	}
	return templates, nil
}

func (uc *CatalogUseCase) GetTemplate(ctx context.Context, id string) (*entity.MissionTemplate, error) {
	t, err := uc.catalogRepo.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NotFound("Mission", err)
		}
		return nil, storageError("load mission", err)
	}
	return t, nil
}

func (uc *CatalogUseCase) CreateTemplate(ctx context.Context, t *entity.MissionTemplate) (*entity.MissionTemplate, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if err := ValidateTemplate(t); err != nil {
		return nil, err
	}

	if _, err := uc.catalogRepo.GetByID(ctx, t.ID); err == nil {
		return nil, errors.BadRequest(fmt.Sprintf("Mission %s already exists", t.ID), nil)
	} else if !isNotFound(err) {
		return nil, storageError("check mission", err)
	}

	if err := uc.catalogRepo.Create(ctx, t); err != nil {
		uc.log.Error("failed to create mission", "missionId", t.ID, "error", err)
		return nil, storageError("create mission", err)
	}

	return t, nil
}

func (uc *CatalogUseCase) UpdateTemplate(ctx context.Context, id string, t *entity.MissionTemplate) (*entity.MissionTemplate, error) {
	t.ID = id
	if err := ValidateTemplate(t); err != nil {
		return nil, err
	}

	if err := uc.catalogRepo.Update(ctx, t); err != nil {
		if isNotFound(err) {
			return nil, errors.NotFound("Mission", err)
		}
		uc.log.Error("failed to update mission", "missionId", id, "error", err)
		return nil, storageError("update mission", err)
	}

	return t, nil
}

func (uc *CatalogUseCase) DeleteTemplate(ctx context.Context, id string) error {
	if err := uc.catalogRepo.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return errors.NotFound("Mission", err)
		}
		uc.log.Error("failed to delete mission", "missionId", id, "error", err)
		return storageError("delete mission", err)
	}
	return nil
}

// ImportCatalog upserts every template in data in one bulk write. Nothing is
// written if any entry is invalid or when dryRun is set.
func (uc *CatalogUseCase) ImportCatalog(ctx context.Context, data []byte, dryRun bool) (*ImportResult, error) {
	templates, err := ParseCatalog(data)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		Count:  len(templates),
		IDs:    make([]string, 0, len(templates)),
		DryRun: dryRun,
	}
	for _, t := range templates {
		result.IDs = append(result.IDs, t.ID)
	}

	if dryRun {
		return result, nil
	}

	if err := uc.catalogRepo.Upsert(ctx, templates); err != nil {
		uc.log.Error("catalog import failed", "count", len(templates), "error", err)
		return nil, storageError("import mission catalog", err)
	}

	uc.log.Info("catalog imported", "count", len(templates))
	return result, nil
}
