package category

import (
	"context"
	"log/slog"
	"strings"

	"github.com/simp-lee/shopbase/internal/domain"
	"github.com/simp-lee/shopbase/internal/repository"
	"github.com/simp-lee/shopbase/internal/store"
)

// Service defines the category operations. Every method returns the
// envelope to send to the client.
type Service interface {
	Create(ctx context.Context, req CreateRequest) store.Reply
	Get(ctx context.Context, id uint) store.Reply
	List(ctx context.Context, q ListQuery, page store.PageRequest) store.Reply
	Update(ctx context.Context, id uint, req UpdateRequest) store.Reply
	Delete(ctx context.Context, id uint) store.Reply
	SoftDelete(ctx context.Context, id uint) store.Reply
	Restore(ctx context.Context, id uint) store.Reply
}

var categorySelect = store.Selection{}.With("Products")

type categoryService struct {
	repo *store.Repository[domain.Category]
	log  *slog.Logger
}

// NewService creates a category Service over the registry.
func NewService(reg *repository.Registry) Service {
	return &categoryService{repo: reg.Categories, log: reg.Categories.Logger()}
}

// Create returns the existing category when the name is taken, otherwise
// the new one.
func (s *categoryService) Create(ctx context.Context, req CreateRequest) store.Reply {
	name := strings.TrimSpace(req.Name)
	existing, err := s.repo.GetByConstraint(ctx, categorySelect, store.Messages{
		NotFound: "Category not found",
		Success:  "Category already exists",
	}, store.Where(store.Eq("name", name)))
	if err != nil {
		return store.Internal(ctx, s.log, "category.create", err)
	}
	if existing.Success {
		return existing
	}

	res, err := s.repo.Create(ctx, &domain.Category{Name: name}, categorySelect, store.Messages{
		Failed:  "Something went wrong while creating category " + name,
		Success: "Category created successfully",
	})
	if err != nil {
		return store.Internal(ctx, s.log, "category.create", err)
	}
	return res
}

func (s *categoryService) Get(ctx context.Context, id uint) store.Reply {
	res, err := s.repo.GetByConstraint(ctx, categorySelect, store.Messages{
		NotFound: "Category not found",
		Success:  "Category found successfully",
	}, s.repo.ByID(id))
	if err != nil {
		return store.Internal(ctx, s.log, "category.get", err)
	}
	return res
}

func (s *categoryService) List(ctx context.Context, q ListQuery, page store.PageRequest) store.Reply {
	where := store.Where(
		store.Contains("name", q.Name),
		store.Eq("is_deleted", q.IsDeleted),
	)
	res, err := s.repo.GetAll(ctx, where, store.Selection{}, store.Messages{
		NotFound: "Category not found",
		Success:  "Categories found successfully",
	}, page)
	if err != nil {
		return store.Internal(ctx, s.log, "category.list", err)
	}
	return res
}

var updateMsgs = store.Messages{
	NotFound:  "Category not found",
	NoChanges: "No changes occurred on category",
	Conflict:  "Category name already exists",
	Failed:    "Something went wrong while updating category",
	Success:   "Category updated successfully",
}

func (s *categoryService) Update(ctx context.Context, id uint, req UpdateRequest) store.Reply {
	name := strings.TrimSpace(req.Name)
	res, err := s.repo.Update(ctx, store.Patch{"name": name}, store.UpdateSpec{
		Where:    []store.Filter{s.repo.ByID(id)},
		Unique:   []store.Filter{store.Where(store.Eq("name", name))},
		Select:   categorySelect,
		Messages: updateMsgs,
	})
	if err != nil {
		return store.Internal(ctx, s.log, "category.update", err)
	}
	return res
}

func (s *categoryService) Delete(ctx context.Context, id uint) store.Reply {
	res, err := s.repo.Delete(ctx, s.repo.ByID(id), store.Selection{}, store.Messages{
		NotFound: "Category not found",
		Failed:   "Something went wrong while deleting category",
		Success:  "Category permanently deleted successfully",
	})
	if err != nil {
		return store.Internal(ctx, s.log, "category.delete", err)
	}
	return res
}

func (s *categoryService) SoftDelete(ctx context.Context, id uint) store.Reply {
	msgs := updateMsgs
	msgs.Failed = "Something went wrong while deleting category"
	msgs.Success = "Category deleted successfully"
	res, err := s.repo.SoftDelete(ctx, s.repo.ByID(id), store.Selection{}, msgs)
	if err != nil {
		return store.Internal(ctx, s.log, "category.softDelete", err)
	}
	return res
}

func (s *categoryService) Restore(ctx context.Context, id uint) store.Reply {
	msgs := updateMsgs
	msgs.Failed = "Something went wrong while restoring category"
	msgs.Success = "Category restored successfully"
	res, err := s.repo.Restore(ctx, s.repo.ByID(id), store.Selection{}, msgs)
	if err != nil {
		return store.Internal(ctx, s.log, "category.restore", err)
	}
	return res
}
