package assetbot_test

import (
	"context"
	"fmt"

	"github.com/aretw0/assetbot"
)

func ExampleNew() {
	eng, err := assetbot.New()
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	for _, msg := range []string{"Hello", "I need a keyboard", "Wireless", "my desk has none"} {
		reply, err := eng.RunTurn(ctx, "emp-42", "emp-42@example.com", msg)
		if err != nil {
			panic(err)
		}
		fmt.Println(reply.Stage)
	}

	// Output:
	// awaiting_asset_type
	// awaiting_configuration
	// awaiting_reason
	// request_completed
}
