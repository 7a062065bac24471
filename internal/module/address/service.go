package address

import (
	"context"
	"log/slog"

	"github.com/simp-lee/shopbase/internal/domain"
	"github.com/simp-lee/shopbase/internal/repository"
	"github.com/simp-lee/shopbase/internal/store"
)

// Service defines the address operations. Addresses are addressed by the
// id of the user owning them.
type Service interface {
	Create(ctx context.Context, userID string, req CreateRequest) store.Reply
	GetByUser(ctx context.Context, userID string) store.Reply
	List(ctx context.Context, q ListQuery, page store.PageRequest) store.Reply
	Update(ctx context.Context, userID string, req UpdateRequest) store.Reply
	Delete(ctx context.Context, userID string) store.Reply
	SoftDelete(ctx context.Context, userID string) store.Reply
	Restore(ctx context.Context, userID string) store.Reply
}

type addressService struct {
	addresses *store.Repository[domain.Address]
	users     *store.Repository[domain.User]
	log       *slog.Logger
}

// NewService creates an address Service over the registry.
func NewService(reg *repository.Registry) Service {
	return &addressService{
		addresses: reg.Addresses,
		users:     reg.Users,
		log:       reg.Addresses.Logger(),
	}
}

func byUser(userID string) store.Filter {
	return store.Where(store.Eq("user_id", userID))
}

// checkUser reports a 400 envelope when userID does not name an active user.
func (s *addressService) checkUser(ctx context.Context, userID string) (store.Reply, error) {
	fk, err := store.CheckForeignKeys(ctx, s.log, map[string]any{"userId": userID},
		store.ForeignKey{Field: "userId", Target: s.users, Message: "User id not found"})
	if err != nil || !fk.Success {
		return fk, err
	}
	return nil, nil
}

func (s *addressService) Create(ctx context.Context, userID string, req CreateRequest) store.Reply {
	if failed, err := s.checkUser(ctx, userID); err != nil {
		return store.Internal(ctx, s.log, "address.create", err)
	} else if failed != nil {
		return failed
	}

	existing, err := s.addresses.GetByConstraint(ctx, store.Selection{}, store.Messages{
		NotFound: "Address not found",
		Success:  "Address already exists",
	}, byUser(userID))
	if err != nil {
		return store.Internal(ctx, s.log, "address.create", err)
	}
	if existing.Success {
		return existing
	}

	res, err := s.addresses.Create(ctx, &domain.Address{
		UserID:     userID,
		Address1:   req.Address1,
		Address2:   req.Address2,
		City:       req.City,
		State:      req.State,
		Country:    req.Country,
		PostalCode: req.PostalCode,
	}, store.Selection{}, store.Messages{
		Failed:  "Something went wrong while creating address with user ID: " + userID,
		Success: "Address created successfully for user ID: " + userID,
	})
	if err != nil {
		return store.Internal(ctx, s.log, "address.create", err)
	}
	return res
}

func (s *addressService) GetByUser(ctx context.Context, userID string) store.Reply {
	res, err := s.addresses.GetByConstraint(ctx, store.Selection{}, store.Messages{
		NotFound: "Address not found for user ID: " + userID,
		Success:  "Address found successfully for user ID: " + userID,
	}, byUser(userID))
	if err != nil {
		return store.Internal(ctx, s.log, "address.get", err)
	}
	return res
}

func (s *addressService) List(ctx context.Context, q ListQuery, page store.PageRequest) store.Reply {
	where := store.Where(
		store.Contains("address1", q.Address1),
		store.Contains("address2", q.Address2),
		store.Contains("city", q.City),
		store.Contains("state", q.State),
		store.Contains("country", q.Country),
		store.Contains("postal_code", q.PostalCode),
		store.Eq("is_deleted", q.IsDeleted),
	)
	res, err := s.addresses.GetAll(ctx, where, store.Selection{}, store.Messages{
		NotFound: "Address not found",
		Success:  "Address list found successfully",
	}, page)
	if err != nil {
		return store.Internal(ctx, s.log, "address.list", err)
	}
	return res
}

func updateMsgs(userID string) store.Messages {
	return store.Messages{
		NotFound:  "Address not found for user ID: " + userID,
		NoChanges: "No changes occurred on address with user ID: " + userID,
		Conflict:  "Address already exists",
		Failed:    "Something went wrong while updating address",
		Success:   "Address updated successfully for user ID: " + userID,
	}
}

func (s *addressService) Update(ctx context.Context, userID string, req UpdateRequest) store.Reply {
	if failed, err := s.checkUser(ctx, userID); err != nil {
		return store.Internal(ctx, s.log, "address.update", err)
	} else if failed != nil {
		return failed
	}

	res, err := s.addresses.Update(ctx, store.Patch{
		"address1":    req.Address1,
		"address2":    req.Address2,
		"city":        req.City,
		"state":       req.State,
		"country":     req.Country,
		"postal_code": req.PostalCode,
	}, store.UpdateSpec{
		Where:    []store.Filter{byUser(userID)},
		Messages: updateMsgs(userID),
	})
	if err != nil {
		return store.Internal(ctx, s.log, "address.update", err)
	}
	return res
}

func (s *addressService) Delete(ctx context.Context, userID string) store.Reply {
	res, err := s.addresses.Delete(ctx, byUser(userID), store.Selection{}, store.Messages{
		NotFound: "Address with user ID: " + userID + " not found",
		Failed:   "Something went wrong while deleting address",
		Success:  "Address with user ID: " + userID + " permanently deleted successfully",
	})
	if err != nil {
		return store.Internal(ctx, s.log, "address.delete", err)
	}
	return res
}

func (s *addressService) SoftDelete(ctx context.Context, userID string) store.Reply {
	msgs := updateMsgs(userID)
	msgs.Failed = "Something went wrong while deleting address with user ID: " + userID
	msgs.Success = "Address with user ID: " + userID + " deleted successfully"
	res, err := s.addresses.SoftDelete(ctx, byUser(userID), store.Selection{}, msgs)
	if err != nil {
		return store.Internal(ctx, s.log, "address.softDelete", err)
	}
	return res
}

func (s *addressService) Restore(ctx context.Context, userID string) store.Reply {
	if failed, err := s.checkUser(ctx, userID); err != nil {
		return store.Internal(ctx, s.log, "address.restore", err)
	} else if failed != nil {
		return failed
	}

	msgs := updateMsgs(userID)
	msgs.Failed = "Something went wrong while restoring address with user ID: " + userID
	msgs.Success = "Address with user ID: " + userID + " restored successfully"
	res, err := s.addresses.Restore(ctx, byUser(userID), store.Selection{}, msgs)
	if err != nil {
		return store.Internal(ctx, s.log, "address.restore", err)
	}
	return res
}
