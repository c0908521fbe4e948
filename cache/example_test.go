package cache_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/busprobe/cache"
)

type conn struct{ name string }

func (c *conn) Close(context.Context) error {
	fmt.Println("closed", c.name)
	return nil
}

func ExampleKeyed_GetOrCreate() {
	c := cache.NewKeyed[*conn]()
	ctx := context.Background()

	builds := 0
	factory := func(context.Context) (*conn, error) {
		builds++
		return &conn{name: "primary"}, nil
	}

	first, _ := c.GetOrCreate(ctx, "ns-a", factory)
	second, _ := c.GetOrCreate(ctx, "ns-a", factory)

	fmt.Println("same instance:", first == second)
	fmt.Println("builds:", builds)

	_ = c.Close(ctx)
	// Output:
	// same instance: true
	// builds: 1
	// closed primary
}

func ExampleKeyed_GetOrCreate_failureNotCached() {
	c := cache.NewKeyed[*conn]()
	ctx := context.Background()

	_, err := c.GetOrCreate(ctx, "ns-b", func(context.Context) (*conn, error) {
		return nil, errors.New("namespace unreachable")
	})
	fmt.Println("first:", err)

	v, err := c.GetOrCreate(ctx, "ns-b", func(context.Context) (*conn, error) {
		return &conn{name: "recovered"}, nil
	})
	fmt.Println("second:", v.name, err)

	_ = c.Close(ctx)
	// Output:
	// first: namespace unreachable
	// second: recovered <nil>
	// closed recovered
}

func ExampleJoinKey() {
	fmt.Println(cache.JoinKey("queue", "ns:example.servicebus.windows.net", "orders", "peek"))
	// Output:
	// 5.queue:33.ns:example.servicebus.windows.net:6.orders:4.peek
}
