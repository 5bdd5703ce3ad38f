package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/arena-engine/internal/services/queue"
	queuePkg "github.com/jwebster45206/arena-engine/pkg/queue"
)

// Queues one or more phases for a session, in order.
// Usage: enqueue <session-id> <phase> [phase...]
func main() {
	if len(os.Args) < 3 {
		phases := make([]string, len(queuePkg.Phases))
		for i, p := range queuePkg.Phases {
			phases[i] = string(p)
		}
		fmt.Fprintf(os.Stderr, "Usage: %s <session-id> <phase> [phase...]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Phases: %s\n", strings.Join(phases, ", "))
		os.Exit(1)
	}

	sessionID, err := uuid.Parse(os.Args[1])
	if err != nil {
		log.Fatal("Invalid session ID:", err)
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	client, err := queue.NewClient(redisURL, slog.Default())
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer client.Close()

	fmt.Println("Connected to Redis successfully!")

	ctx := context.Background()
	pq := queue.NewPhaseQueue(client)

	for _, arg := range os.Args[2:] {
		phase, err := queuePkg.ParsePhase(arg)
		if err != nil {
			log.Fatal(err)
		}
		req := queuePkg.NewPhaseRequest(sessionID, phase)
		if err := pq.EnqueueRequest(ctx, req); err != nil {
			log.Fatal("Failed to enqueue request:", err)
		}
		fmt.Printf("✅ Enqueued %s: %s\n", phase, req.RequestID)
	}

	depth, err := pq.RequestQueueDepth(ctx)
	if err != nil {
		log.Fatal("Failed to get queue depth:", err)
	}

	fmt.Printf("\n📊 Queue depth: %d requests\n", depth)
}
