package cache

import (
	"github.com/example/order-service/internal/domain"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache holds recently read orders keyed by id. Orders are never mutated
// after creation, so entries cannot go stale.
type Cache struct {
	lru *lru.Cache[int64, domain.Order]
}

func New(size int) (*Cache, error) {
	if size < 1 {
		size = 1
	}
	c, err := lru.New[int64, domain.Order](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: c}, nil
}

func (c *Cache) Get(id int64) (*domain.Order, bool) {
	order, ok := c.lru.Get(id)
	if !ok {
		return nil, false
	}
	return &order, true
}

func (c *Cache) Set(order *domain.Order) {
	c.lru.Add(order.OrderID, *order)
}

func (c *Cache) Len() int { return c.lru.Len() }
