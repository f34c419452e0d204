package cart

import "sync"

// Registry 按客户端标识保存各自的购物车，首次访问时创建。
type Registry struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

func NewRegistry() *Registry {
	return &Registry{carts: map[string]*Cart{}}
}

// Get 返回 id 对应的购物车。
func (r *Registry) Get(id string) *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[id]
	if !ok {
		c = New()
		r.carts[id] = c
	}
	return c
}

// Drop 丢弃 id 对应的购物车。
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, id)
}
