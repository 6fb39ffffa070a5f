package sessions

import (
	"context"
	"fmt"

	"github.com/Rakhulsr/go-storefront/app/models"
	lru "github.com/hashicorp/golang-lru"
)

// CartStore keeps one cart per cart session key. Missing keys read as an
// empty cart.
type CartStore interface {
	Get(ctx context.Context, key string) (models.Cart, error)
	Put(ctx context.Context, key string, cart models.Cart) error
	Delete(ctx context.Context, key string) error
}

// LRUCartStore holds carts in process memory. When full, the cart that was
// touched least recently is dropped.
type LRUCartStore struct {
	cache *lru.Cache
}

func NewLRUCartStore(size int) (*LRUCartStore, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create cart cache: %w", err)
	}
	return &LRUCartStore{cache: cache}, nil
}

func (s *LRUCartStore) Get(ctx context.Context, key string) (models.Cart, error) {
	if err := ctx.Err(); err != nil {
		return models.Cart{}, err
	}
	v, ok := s.cache.Get(key)
	if !ok {
		return models.Cart{}, nil
	}
	return v.(models.Cart).Clone(), nil
}

func (s *LRUCartStore) Put(ctx context.Context, key string, cart models.Cart) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("empty cart key")
	}
	s.cache.Add(key, cart.Clone())
	return nil
}

func (s *LRUCartStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.cache.Remove(key)
	return nil
}

func (s *LRUCartStore) Len() int {
	return s.cache.Len()
}
