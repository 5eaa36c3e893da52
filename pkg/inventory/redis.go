package inventory

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
)

// Redis key prefixes for published inventories.
const (
	HostTable    = "GNS3LAB_INVENTORY"
	ProjectTable = "GNS3LAB_PROJECT"
)

// HostKey returns the hash key of one published host.
func HostKey(project, host string) string {
	return fmt.Sprintf("%s|%s|%s", HostTable, project, host)
}

// ProjectKey returns the set key listing a project's published hosts.
func ProjectKey(project string) string {
	return ProjectTable + "|" + project
}

// Publisher writes inventories to Redis for downstream automation.
type Publisher struct {
	client *redis.Client
}

// NewPublisher creates a publisher for the Redis server at addr.
func NewPublisher(addr string, db int) *Publisher {
	return &Publisher{
		client: redis.NewClient(&redis.Options{Addr: addr, DB: db}),
	}
}

// Ping tests the connection.
func (p *Publisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Close closes the connection.
func (p *Publisher) Close() error {
	return p.client.Close()
}

// Publish replaces the project's previously published hosts with inv in a
// single MULTI/EXEC transaction.
func (p *Publisher) Publish(ctx context.Context, inv *Inventory) error {
	previous, err := p.client.SMembers(ctx, ProjectKey(inv.Project)).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("inventory: read published hosts: %w", err)
	}

	pipe := p.client.TxPipeline()
	for _, key := range staleKeys(inv.Project, previous) {
		pipe.Del(ctx, key)
	}
	for _, e := range hostEntries(inv) {
		pipe.HSet(ctx, e.Key, e.Fields)
	}
	if names := hostNames(inv); len(names) > 0 {
		pipe.SAdd(ctx, ProjectKey(inv.Project), names...)
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return fmt.Errorf("inventory: publish pipeline exec: %w", err)
	}
	return nil
}

// hostEntry is one hash to write.
type hostEntry struct {
	Key    string
	Fields map[string]interface{}
}

func hostEntries(inv *Inventory) []hostEntry {
	var out []hostEntry
	for _, g := range inv.Groups {
		for _, h := range g.Hosts {
			out = append(out, hostEntry{
				Key: HostKey(inv.Project, h.Name),
				Fields: map[string]interface{}{
					"group":        g.Name,
					"ansible_host": h.Address,
					"node_id":      h.NodeID,
					"console":      strconv.Itoa(h.Console),
				},
			})
		}
	}
	return out
}

// staleKeys lists every key of a previous publication, the project set
// included.
func staleKeys(project string, previous []string) []string {
	keys := make([]string, 0, len(previous)+1)
	for _, name := range previous {
		keys = append(keys, HostKey(project, name))
	}
	return append(keys, ProjectKey(project))
}

func hostNames(inv *Inventory) []interface{} {
	var names []interface{}
	for _, g := range inv.Groups {
		for _, h := range g.Hosts {
			names = append(names, h.Name)
		}
	}
	return names
}
