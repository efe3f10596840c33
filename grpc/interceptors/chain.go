package interceptors

import (
	grpcmiddleware "github.com/grpc-ecosystem/go-grpc-middleware"
	"google.golang.org/grpc"
)

// UnaryServerInterceptorChain is an ordered, named set of grpc.UnaryServerInterceptor's.
// None of the operations are concurrency-safe.
type UnaryServerInterceptorChain struct {
	itemOrder []string
	items     map[string]grpc.UnaryServerInterceptor
}

func NewUnaryServerInterceptorChain() *UnaryServerInterceptorChain {
	return &UnaryServerInterceptorChain{
		items: make(map[string]grpc.UnaryServerInterceptor),
	}
}

func (c *UnaryServerInterceptorChain) Exists(id string) bool {
	_, ok := c.items[id]
	return ok
}

// Push adds a new interceptor onto the end of the chain.
// Returns false if an item with the specified ID already exists.
// Push("b", <inter>)
//
//	Before: a
//	After: a -> b
func (c *UnaryServerInterceptorChain) Push(id string, inter grpc.UnaryServerInterceptor) bool {
	if c.Exists(id) {
		return false
	}
	c.items[id] = inter
	c.itemOrder = append(c.itemOrder, id)
	return true
}

// InsertBefore inserts an interceptor before the specified interceptor in the chain.
// InsertBefore("b", "c", <inter>)
//
//	Before: a -> b
//	After: a -> c -> b
func (c *UnaryServerInterceptorChain) InsertBefore(beforeID, id string, inter grpc.UnaryServerInterceptor) bool {
	if c.Exists(id) || !c.Exists(beforeID) {
		return false
	}
	for i := range c.itemOrder {
		if c.itemOrder[i] == beforeID {
			c.itemOrder = append(c.itemOrder[:i], append([]string{id}, c.itemOrder[i:]...)...)
			break
		}
	}
	c.items[id] = inter
	return true
}

// Delete removes the interceptor with the given id.
func (c *UnaryServerInterceptorChain) Delete(id string) bool {
	if !c.Exists(id) {
		return false
	}
	delete(c.items, id)
	for i := range c.itemOrder {
		if c.itemOrder[i] == id {
			c.itemOrder = append(c.itemOrder[:i], c.itemOrder[i+1:]...)
			break
		}
	}
	return true
}

// IDs returns the interceptor ids in execution order.
func (c *UnaryServerInterceptorChain) IDs() []string {
	return append([]string(nil), c.itemOrder...)
}

// Commit combines the chain into a single interceptor executing the items in order.
func (c *UnaryServerInterceptorChain) Commit() grpc.UnaryServerInterceptor {
	inters := make([]grpc.UnaryServerInterceptor, 0, len(c.itemOrder))
	for _, id := range c.itemOrder {
		inters = append(inters, c.items[id])
	}
	return grpcmiddleware.ChainUnaryServer(inters...)
}
