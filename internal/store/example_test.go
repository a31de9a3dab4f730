package store_test

import (
	"fmt"

	"github.com/dshills/statebus/internal/store"
)

func Example() {
	s := store.New(map[string]any{"name": "ada", "followers": 100})

	s.OnChange(func(next, prev map[string]any) map[string]any {
		fmt.Println("followers:", prev["followers"], "->", next["followers"])
		return next
	}, store.Fields("followers"))

	s.Set(map[string]any{"followers": 101})
	s.Set(map[string]any{"name": "ada lovelace"})

	fmt.Println(s.Get()["name"], s.Version())
	// Output:
	// followers: 100 -> 101
	// ada lovelace 2
}
