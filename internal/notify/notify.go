// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notify

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/idea-engine/pkg/types"
)

// SendAll delivers each idea through the sender, writing per-idea progress
// to w. A delivery failure is logged and skipped; the rest still go out.
// Returns one event per idea actually delivered.
func SendAll(ctx context.Context, sender Sender, ideas []types.ScoredIdea, w io.Writer) []types.NotificationEvent {
	events := make([]types.NotificationEvent, 0, len(ideas))
	for _, idea := range ideas {
		if err := sender.Send(ctx, idea); err != nil {
			fmt.Fprintf(w, "notify failed %s: %v\n", idea.Idea.Primary.Raw.Title, err)
			continue
		}
		fmt.Fprintf(w, "notified %s (%.2f)\n", idea.Idea.Primary.Raw.Title, idea.Analysis.Score)
		events = append(events, types.NotificationEvent{Idea: idea, NotifiedAt: time.Now().UTC()})
	}
	return events
}
