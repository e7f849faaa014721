package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Khizarkk7/storefront-backend/services/cart-service/models"
)

const (
	maxTxRetries  = 5
	pendingReplay = "pending"
)

var ErrConflict = errors.New("cart changed concurrently, retry")

// CartRepository keeps carts and wishlists as Redis hashes keyed by
// product id, one hash per owner and shop.
type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{client: client, ttl: ttl}
}

func cartKey(owner, slug string) string     { return fmt.Sprintf("cart:%s:%s", owner, slug) }
func wishlistKey(owner, slug string) string { return fmt.Sprintf("wishlist:%s:%s", owner, slug) }
func idemKey(owner, key string) string      { return fmt.Sprintf("idem:checkout:%s:%s", owner, key) }

// Items returns the cart lines oldest first.
func (r *CartRepository) Items(ctx context.Context, owner, slug string) ([]models.CartItem, error) {
	raw, err := r.client.HGetAll(ctx, cartKey(owner, slug)).Result()
	if err != nil {
		return nil, err
	}
	items := make([]models.CartItem, 0, len(raw))
	for _, v := range raw {
		var item models.CartItem
		if err := json.Unmarshal([]byte(v), &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].AddedAt.Equal(items[j].AddedAt) {
			return items[i].ProductID < items[j].ProductID
		}
		return items[i].AddedAt.Before(items[j].AddedAt)
	})
	return items, nil
}

func (r *CartRepository) Item(ctx context.Context, owner, slug, productID string) (*models.CartItem, error) {
	v, err := r.client.HGet(ctx, cartKey(owner, slug), productID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var item models.CartItem
	if err := json.Unmarshal([]byte(v), &item); err != nil {
		return nil, fmt.Errorf("decode cart item: %w", err)
	}
	return &item, nil
}

// AddItem merges item into the cart: quantities add up to
// MaxLineQuantity, name/price/image take the latest values.
func (r *CartRepository) AddItem(ctx context.Context, owner, slug string, item models.CartItem) (*models.CartItem, error) {
	key := cartKey(owner, slug)
	var merged models.CartItem
	err := r.update(ctx, func(tx *redis.Tx) error {
		existing, err := readItem(ctx, tx, key, item.ProductID)
		if err != nil {
			return err
		}
		merged = mergeLine(existing, item)
		return r.writeItems(ctx, tx, key, merged)
	}, key)
	if err != nil {
		return nil, err
	}
	return &merged, nil
}

// SetQuantity overwrites a line's quantity; 0 removes the line. It reports
// false when the product is not in the cart.
func (r *CartRepository) SetQuantity(ctx context.Context, owner, slug, productID string, qty int) (*models.CartItem, bool, error) {
	key := cartKey(owner, slug)
	var (
		updated *models.CartItem
		found   bool
	)
	err := r.update(ctx, func(tx *redis.Tx) error {
		existing, err := readItem(ctx, tx, key, productID)
		if err != nil || existing == nil {
			found = false
			return err
		}
		found = true
		if qty <= 0 {
			updated = nil
			_, err := tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
				p.HDel(ctx, key, productID)
				return nil
			})
			return err
		}
		existing.Quantity = min(qty, models.MaxLineQuantity)
		updated = existing
		return r.writeItems(ctx, tx, key, *existing)
	}, key)
	return updated, found, err
}

func (r *CartRepository) RemoveItem(ctx context.Context, owner, slug, productID string) (bool, error) {
	n, err := r.client.HDel(ctx, cartKey(owner, slug), productID).Result()
	return n > 0, err
}

func (r *CartRepository) Clear(ctx context.Context, owner, slug string) error {
	return r.client.Del(ctx, cartKey(owner, slug)).Err()
}

// Merge folds the from cart into the to cart and deletes it. It returns
// the number of lines moved.
func (r *CartRepository) Merge(ctx context.Context, from, to, slug string) (int, error) {
	src, dst := cartKey(from, slug), cartKey(to, slug)
	moved := 0
	err := r.update(ctx, func(tx *redis.Tx) error {
		raw, err := tx.HGetAll(ctx, src).Result()
		if err != nil {
			return err
		}
		moved = 0
		lines := make([]models.CartItem, 0, len(raw))
		for _, v := range raw {
			var incoming models.CartItem
			if json.Unmarshal([]byte(v), &incoming) != nil {
				continue
			}
			existing, err := readItem(ctx, tx, dst, incoming.ProductID)
			if err != nil {
				return err
			}
			merged := mergeLine(existing, incoming)
			if existing != nil {
				merged.AddedAt = existing.AddedAt
			}
			lines = append(lines, merged)
			moved++
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			for _, line := range lines {
				data, err := json.Marshal(line)
				if err != nil {
					return err
				}
				p.HSet(ctx, dst, line.ProductID, data)
			}
			if len(lines) > 0 {
				p.Expire(ctx, dst, r.ttl)
			}
			p.Del(ctx, src)
			return nil
		})
		return err
	}, src, dst)
	return moved, err
}

func (r *CartRepository) WishlistItems(ctx context.Context, owner, slug string) ([]models.WishlistItem, error) {
	raw, err := r.client.HGetAll(ctx, wishlistKey(owner, slug)).Result()
	if err != nil {
		return nil, err
	}
	items := make([]models.WishlistItem, 0, len(raw))
	for _, v := range raw {
		var item models.WishlistItem
		if json.Unmarshal([]byte(v), &item) == nil {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].AddedAt.After(items[j].AddedAt) })
	return items, nil
}

// ToggleWishlist adds the product when absent and removes it otherwise,
// returning whether it is now in the wishlist.
func (r *CartRepository) ToggleWishlist(ctx context.Context, owner, slug string, item models.WishlistItem) (bool, error) {
	key := wishlistKey(owner, slug)
	data, err := json.Marshal(item)
	if err != nil {
		return false, err
	}
	added, err := r.client.HSetNX(ctx, key, item.ProductID, data).Result()
	if err != nil {
		return false, err
	}
	if added {
		return true, r.client.Expire(ctx, key, r.ttl).Err()
	}
	return false, r.client.HDel(ctx, key, item.ProductID).Err()
}

func (r *CartRepository) RemoveWishlist(ctx context.Context, owner, slug, productID string) (bool, error) {
	n, err := r.client.HDel(ctx, wishlistKey(owner, slug), productID).Result()
	return n > 0, err
}

func (r *CartRepository) InWishlist(ctx context.Context, owner, slug, productID string) (bool, error) {
	return r.client.HExists(ctx, wishlistKey(owner, slug), productID).Result()
}

// ClaimIdempotency reserves key for one checkout. When the key was already
// claimed it returns the stored response, or nil while the first request
// is still running.
func (r *CartRepository) ClaimIdempotency(ctx context.Context, owner, key string, ttl time.Duration) ([]byte, bool, error) {
	k := idemKey(owner, key)
	ok, err := r.client.SetNX(ctx, k, pendingReplay, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if ok {
		return nil, true, nil
	}
	stored, err := r.client.Get(ctx, k).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, false, err
	}
	if string(stored) == pendingReplay {
		return nil, false, nil
	}
	return stored, false, nil
}

func (r *CartRepository) StoreIdempotency(ctx context.Context, owner, key string, response []byte, ttl time.Duration) error {
	return r.client.Set(ctx, idemKey(owner, key), response, ttl).Err()
}

func (r *CartRepository) ReleaseIdempotency(ctx context.Context, owner, key string) error {
	return r.client.Del(ctx, idemKey(owner, key)).Err()
}

// update runs fn in a WATCH transaction, retrying when a watched key
// changed underneath it.
func (r *CartRepository) update(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrConflict
}

func (r *CartRepository) writeItems(ctx context.Context, tx *redis.Tx, key string, items ...models.CartItem) error {
	_, err := tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, item := range items {
			data, err := json.Marshal(item)
			if err != nil {
				return err
			}
			p.HSet(ctx, key, item.ProductID, data)
		}
		p.Expire(ctx, key, r.ttl)
		return nil
	})
	return err
}

func readItem(ctx context.Context, tx *redis.Tx, key, productID string) (*models.CartItem, error) {
	v, err := tx.HGet(ctx, key, productID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var item models.CartItem
	if err := json.Unmarshal([]byte(v), &item); err != nil {
		return nil, nil
	}
	return &item, nil
}

func mergeLine(existing *models.CartItem, incoming models.CartItem) models.CartItem {
	if incoming.Quantity <= 0 {
		incoming.Quantity = 1
	}
	if existing == nil {
		if incoming.AddedAt.IsZero() {
			incoming.AddedAt = time.Now().UTC()
		}
		incoming.Quantity = min(incoming.Quantity, models.MaxLineQuantity)
		return incoming
	}
	merged := incoming
	merged.AddedAt = existing.AddedAt
	merged.Quantity = min(existing.Quantity+incoming.Quantity, models.MaxLineQuantity)
	return merged
}
