package resilience_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/toolgate/resilience"
)

func ExampleGuard_Do() {
	g := resilience.New(resilience.Config{
		MaxFailures:  2,
		ResetTimeout: time.Minute,
		Timeout:      time.Second,
	})
	ctx := context.Background()
	down := errors.New("sink down")

	for i := range 3 {
		err := g.Do(ctx, func(context.Context) error { return down })
		fmt.Printf("call %d shed=%v\n", i+1, resilience.IsShed(err))
	}
	// Output:
	// call 1 shed=false
	// call 2 shed=false
	// call 3 shed=true
}
