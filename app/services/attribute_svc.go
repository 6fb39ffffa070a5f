package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

type CreateColorInput struct {
	Name string `json:"name" validate:"required,max=50"`
	Code string `json:"code" validate:"omitempty,hexcolor"`
}

type CreateSizeInput struct {
	Name      string          `json:"name" validate:"required,max=10"`
	Kind      models.SizeKind `json:"kind" validate:"required,oneof=symbolic numeric"`
	SortOrder int             `json:"sort_order" validate:"gte=0"`
}

type AttributeService struct {
	db          *gorm.DB
	attrRepo    repositories.AttributeRepository
	variantRepo repositories.VariantRepository
	validate    *validator.Validate
}

func NewAttributeService(db *gorm.DB, attrRepo repositories.AttributeRepository, variantRepo repositories.VariantRepository) *AttributeService {
	return &AttributeService{
		db:          db,
		attrRepo:    attrRepo,
		variantRepo: variantRepo,
		validate:    validator.New(),
	}
}

func (s *AttributeService) CreateColor(ctx context.Context, in CreateColorInput) (*models.Color, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate.Struct(in); err != nil {
		return nil, &Error{Code: CodeInvalidInput, Message: "invalid color", Err: err}
	}

	color := &models.Color{Name: in.Name, Code: strings.ToLower(in.Code)}
	if err := s.attrRepo.CreateColor(ctx, color); err != nil {
		if repositories.IsDuplicateKey(err) {
			return nil, newError(CodeDuplicateAttribute, "color %q already exists", in.Name)
		}
		log.Printf("AttributeService.CreateColor: %v", err)
		return nil, internal(err, "failed to create color")
	}
	return color, nil
}

func (s *AttributeService) CreateSize(ctx context.Context, in CreateSizeInput) (*models.Size, error) {
	in.Name = strings.ToUpper(strings.TrimSpace(in.Name))
	if err := s.validate.Struct(in); err != nil {
		return nil, &Error{Code: CodeInvalidInput, Message: "invalid size", Err: err}
	}

	size := &models.Size{Name: in.Name, Kind: in.Kind, SortOrder: in.SortOrder}
	if err := s.attrRepo.CreateSize(ctx, size); err != nil {
		if repositories.IsDuplicateKey(err) {
			return nil, newError(CodeDuplicateAttribute, "%s size %q already exists", in.Kind, in.Name)
		}
		log.Printf("AttributeService.CreateSize: %v", err)
		return nil, internal(err, "failed to create size")
	}
	return size, nil
}

func (s *AttributeService) ListColors(ctx context.Context) ([]models.Color, error) {
	colors, err := s.attrRepo.ListColors(ctx)
	if err != nil {
		return nil, internal(err, "failed to list colors")
	}
	return colors, nil
}

func (s *AttributeService) ListSizes(ctx context.Context, kind models.SizeKind) ([]models.Size, error) {
	if kind != "" && kind != models.SizeKindSymbolic && kind != models.SizeKindNumeric {
		return nil, newError(CodeInvalidInput, "unknown size kind %q", kind)
	}
	sizes, err := s.attrRepo.ListSizes(ctx, kind)
	if err != nil {
		return nil, internal(err, "failed to list sizes")
	}
	return sizes, nil
}

// DeleteColor locks the color row before counting references so a
// concurrent variant insert cannot slip in between check and delete.
func (s *AttributeService) DeleteColor(ctx context.Context, id string) error {
	return s.deleteAttribute(ctx, "color", id,
		func(tx *gorm.DB) (bool, error) {
			c, err := s.attrRepo.LockColor(ctx, tx, id)
			return c != nil, err
		},
		func(tx *gorm.DB) error { return s.attrRepo.DeleteColor(ctx, tx, id) },
	)
}

func (s *AttributeService) DeleteSize(ctx context.Context, id string) error {
	return s.deleteAttribute(ctx, "size", id,
		func(tx *gorm.DB) (bool, error) {
			sz, err := s.attrRepo.LockSize(ctx, tx, id)
			return sz != nil, err
		},
		func(tx *gorm.DB) error { return s.attrRepo.DeleteSize(ctx, tx, id) },
	)
}

func (s *AttributeService) deleteAttribute(ctx context.Context, kind, id string, lock func(*gorm.DB) (bool, error), del func(*gorm.DB) error) error {
	if id == "" {
		return newError(CodeAttributeNotFound, "%s not found", kind)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := lock(tx)
		if err != nil {
			return fmt.Errorf("lock %s: %w", kind, err)
		}
		if !found {
			return newError(CodeAttributeNotFound, "%s %s not found", kind, id)
		}

		refs, err := s.variantRepo.CountByAttribute(ctx, tx, kind+"_id", id)
		if err != nil {
			return fmt.Errorf("count %s references: %w", kind, err)
		}
		if refs > 0 {
			return newError(CodeAttributeInUse, "%s is used by %d variants", kind, refs)
		}
		return del(tx)
	})
	if err != nil {
		var svcErr *Error
		if errors.As(err, &svcErr) {
			return svcErr
		}
		log.Printf("AttributeService.Delete: failed to delete %s %s: %v", kind, id, err)
		return internal(err, "failed to delete %s", kind)
	}
	return nil
}
