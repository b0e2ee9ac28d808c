/*
Package assetbot is a deterministic dialogue engine that helps employees request IT assets.

A conversation walks a fixed set of stages: greeting, asset type, configuration,
reason and completion. Each user message is routed through a transition table of
guarded edges to exactly one node, which replies, updates the pending request and
moves the stage. Availability and configurations come from an inventory port, and
sessions live in memory or in an external store.

# Usage

	eng, err := assetbot.New()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	reply, err := eng.RunTurn(ctx, "emp-123", "emp-123@example.com", "Hi there")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(reply.AssistantText)

Turns of one session are serialized; different sessions run in parallel.
Completed requests are handed to a ports.RequestRecorder when one is configured.
*/
package assetbot
