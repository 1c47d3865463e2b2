package cart

import "recipehub/internal/kvstore"

// Service hands out per-user Carts over one shared store. Carts for the same
// scope share a mutex, so concurrent requests from one user cannot lose each
// other's read-modify-write.
type Service struct {
	store kvstore.Store
	locks kvstore.Locks
}

func NewService(store kvstore.Store) *Service {
	return &Service{store: store}
}

// For returns the cart of scope (normally a user id).
func (s *Service) For(scope string) *Cart {
	return &Cart{store: kvstore.Scoped(s.store, scope), mu: s.locks.For(scope)}
}
