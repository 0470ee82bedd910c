package service

import (
	"context"
	"errors"
	"fmt"

	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/exercisedb"
	"fitcoach/coach-app/internal/repository"
	"fitcoach/coach-app/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound     = errors.New("exercise not found")
	ErrExerciseAccessDenied = errors.New("access denied to modify or delete this exercise")
	ErrCatalogUnavailable   = errors.New("exercise catalog is unavailable")
)

// ExerciseInput carries the editable fields of a custom exercise.
type ExerciseInput struct {
	Name      string
	BodyPart  string
	Equipment string
	Target    string
	GifURL    string
}

// MediaUpload is a presigned upload slot for exercise media.
type MediaUpload struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// --- Service Interface ---
type ExerciseService interface {
	CreateCustom(ctx context.Context, trainerID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error)
	GetByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	ListVisible(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Exercise, error)
	UpdateCustom(ctx context.Context, trainerID, exerciseID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error)
	DeleteCustom(ctx context.Context, trainerID, exerciseID primitive.ObjectID) error

	// Catalog operations backed by the external ExerciseDB API.
	SearchCatalog(ctx context.Context, query string, limit int) ([]exercisedb.CatalogExercise, error)
	ImportCatalogExercise(ctx context.Context, entry exercisedb.CatalogExercise) (*domain.Exercise, error)

	// GenerateMediaUploadURL returns a presigned PUT slot for a custom
	// exercise GIF or demo clip.
	GenerateMediaUploadURL(ctx context.Context, trainerID primitive.ObjectID, contentType string) (*MediaUpload, error)
}

// --- Service Implementation ---

type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	catalog      exercisedb.Client
	fileStorage  storage.FileStorage
}

// NewExerciseService creates a new instance of exerciseService. Catalog and
// storage are optional; the corresponding operations fail cleanly without
// them.
func NewExerciseService(
	exerciseRepo repository.ExerciseRepository,
	catalog exercisedb.Client,
	fileStorage storage.FileStorage,
) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
		catalog:      catalog,
		fileStorage:  fileStorage,
	}
}

// CreateCustom adds a trainer-owned exercise to the library. Custom
// exercises always carry their owner; catalog entries never do.
func (s *exerciseService) CreateCustom(ctx context.Context, trainerID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error) {
	if trainerID == primitive.NilObjectID {
		return nil, errors.New("trainer ID is required to create an exercise")
	}
	if input.Name == "" {
		return nil, fmt.Errorf("%w: exercise name is required", ErrValidation)
	}

	exercise := &domain.Exercise{
		Name:      input.Name,
		BodyPart:  input.BodyPart,
		Equipment: input.Equipment,
		Target:    input.Target,
		GifURL:    input.GifURL,
		IsCustom:  true,
		TrainerID: &trainerID,
	}

	exerciseID, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	exercise.ID = exerciseID
	return exercise, nil
}

// GetByID retrieves a single exercise.
func (s *exerciseService) GetByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// ListVisible lists catalog exercises plus the trainer's own custom ones.
func (s *exerciseService) ListVisible(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Exercise, error) {
	if trainerID == primitive.NilObjectID {
		return nil, errors.New("trainer ID cannot be nil")
	}
	return s.exerciseRepo.GetVisibleToTrainer(ctx, trainerID)
}

// UpdateCustom edits a custom exercise, enforcing ownership. Catalog
// entries are read-only.
func (s *exerciseService) UpdateCustom(ctx context.Context, trainerID, exerciseID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: exercise name is required", ErrValidation)
	}

	existing, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	if !existing.IsCustom || existing.TrainerID == nil || *existing.TrainerID != trainerID {
		return nil, ErrExerciseAccessDenied
	}

	existing.Name = input.Name
	existing.BodyPart = input.BodyPart
	existing.Equipment = input.Equipment
	existing.Target = input.Target
	existing.GifURL = input.GifURL

	if err := s.exerciseRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return existing, nil
}

// DeleteCustom removes a custom exercise. The repository filter includes the
// trainer ID, so ownership is enforced at the DB level and a catalog entry
// (which has no trainer) never matches.
func (s *exerciseService) DeleteCustom(ctx context.Context, trainerID, exerciseID primitive.ObjectID) error {
	if trainerID == primitive.NilObjectID || exerciseID == primitive.NilObjectID {
		return errors.New("trainer ID and exercise ID are required")
	}

	err := s.exerciseRepo.Delete(ctx, exerciseID, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}
	return nil
}

// SearchCatalog queries the external exercise catalog by name.
func (s *exerciseService) SearchCatalog(ctx context.Context, query string, limit int) ([]exercisedb.CatalogExercise, error) {
	if s.catalog == nil {
		return nil, ErrCatalogUnavailable
	}
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", ErrValidation)
	}
	results, err := s.catalog.SearchByName(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return results, nil
}

// ImportCatalogExercise copies a catalog entry into the local library so
// workouts can reference it by ObjectID.
func (s *exerciseService) ImportCatalogExercise(ctx context.Context, entry exercisedb.CatalogExercise) (*domain.Exercise, error) {
	if entry.Name == "" {
		return nil, fmt.Errorf("%w: catalog entry has no name", ErrValidation)
	}

	exercise := &domain.Exercise{
		Name:      entry.Name,
		BodyPart:  entry.BodyPart,
		Equipment: entry.Equipment,
		Target:    entry.Target,
		GifURL:    entry.GifURL,
		IsCustom:  false,
		TrainerID: nil,
	}

	exerciseID, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	exercise.ID = exerciseID
	return exercise, nil
}

// GenerateMediaUploadURL hands out a presigned PUT URL under a per-trainer
// media prefix.
func (s *exerciseService) GenerateMediaUploadURL(ctx context.Context, trainerID primitive.ObjectID, contentType string) (*MediaUpload, error) {
	if s.fileStorage == nil {
		return nil, errors.New("file storage is not configured")
	}
	if trainerID == primitive.NilObjectID {
		return nil, errors.New("trainer ID is required")
	}

	objectKey := fmt.Sprintf("exercise-media/%s/%s", trainerID.Hex(), uuid.NewString())
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, err
	}
	return &MediaUpload{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}
