// Package redis provides Redis-backed storage for LangGraph Go checkpoints and state.
//
// This package implements fast, in-memory checkpoint storage using Redis, ideal for
// scenarios requiring low-latency access to checkpoints and supporting distributed
// graph executions across multiple processes or servers.
//
// # Key Features
//
//   - High-performance checkpoint storage with Redis
//   - Support for TTL (time-to-live) automatic expiration
//   - Configurable key prefixes for multi-tenancy
//   - JSON serialization of complex state objects
//   - List and Clear select by the "execution_id" metadata value given on Save
//
// The store opens one go-redis client from Addr, Password and DB. It has
// no cluster or sentinel constructor, no locking and no Pub/Sub
// notifications.
//
// # Basic Usage
//
//	import (
//		"context"
//		"github.com/graphrag-pipeline/corepipeline/store/redis"
//	)
//
//	// Create a Redis checkpoint store
//	store := redis.NewRedisCheckpointStore(redis.RedisOptions{
//		Addr:     "localhost:6379",
//		Password: "yourpassword",
//		DB:       0,                    // Redis database number
//		Prefix:   "langgraph:",         // Optional key prefix
//		TTL:      24 * time.Hour,       // Optional TTL for checkpoints
//	})
//
// # Configuration
//
// ## Connection Options
//
//	// Single Redis instance
//	store := redis.NewRedisCheckpointStore(redis.RedisOptions{
//		Addr:     "localhost:6379",
//		Password: "",
//		DB:       0,
//	})
//
//	// With authentication
//	store := redis.NewRedisCheckpointStore(redis.RedisOptions{
//		Addr:     "redis.example.com:6379",
//		Password: "your-redis-password",
//		DB:       1,
//	})
//
//	// With Unix socket
//	store := redis.NewRedisCheckpointStore(redis.RedisOptions{
//		Addr:     "/var/run/redis/redis.sock",
//		Password: "",
//		DB:       0,
//	})
//
// ## TTL Configuration
//
//	// Set default TTL for all checkpoints (24 hours)
//	store := redis.NewRedisCheckpointStore(redis.RedisOptions{
//		Addr: "localhost:6379",
//		TTL:  24 * time.Hour,
//	})
//
//	// No expiration (persistent)
//	store := redis.NewRedisCheckpointStore(redis.RedisOptions{
//		Addr: "localhost:6379",
//		TTL:  0,
//	})
//
// # Key Management
//
//	// Each checkpoint is a JSON string
//	// Format: {prefix}checkpoint:{checkpoint_id}
//	// Example: "langgraph:checkpoint:abc123"
//
//	// Each execution's checkpoint IDs are kept in a set
//	// Format: {prefix}execution:{execution_id}:checkpoints
//	// Example: "langgraph:execution:xyz789:checkpoints"
//
// The TTL from RedisOptions applies to every checkpoint; there is no
// per-checkpoint TTL.
//
// The redis client is unexported; the store exposes no pipelining,
// scripting or monitoring hooks.
//
// # Error Handling
//
//	// Retry a failed save
//	for i := 0; i < 3; i++ {
//		err := store.Save(ctx, checkpoint)
//		if err == nil {
//			break
//		}
//		if i == 2 {
//			return err
//		}
//		time.Sleep(time.Second * time.Duration(i+1))
//	}
//
// # Integration Examples
//
// ## With Session Affinity
//
//	// Store checkpoints per user session
//	func getUserStore(userID string) *redis.RedisCheckpointStore {
//		return redis.NewRedisCheckpointStore(redis.RedisOptions{
//			Addr:   "localhost:6379",
//			Prefix: fmt.Sprintf("user:%s:langgraph:", userID),
//			TTL:    2 * time.Hour, // Session timeout
//		})
//	}
//
//	userStore := getUserStore("user-123")
//
// # Best Practices
//
//  1. Use meaningful key prefixes for organization
//  2. Set appropriate TTL to prevent memory bloat
//  3. Use connection pooling in production
//  4. Implement proper error handling with retries
//  5. Monitor Redis memory usage
//  6. Use Redis Cluster for high availability
//  7. Enable persistence for critical data
//  8. Use pipelining for batch operations
//  9. Consider compression for large state objects
//  10. Test failover scenarios
//
// # Security Considerations
//
//   - Enable Redis AUTH in production
//   - Use TLS/SSL for network connections
//   - Implement proper network isolation
//   - Use Redis ACLs for fine-grained access control
//   - Encrypt sensitive data before storage
//   - Disable dangerous commands (CONFIG, FLUSHDB)
//   - Set up proper firewalls
//   - Monitor for suspicious activity
//
// # Docker Integration
//
// Use with Docker Compose:
//
// ```yaml
// version: '3.8'
// services:
//
//	langgraph:
//	  image: your-app
//	  environment:
//	    - REDIS_ADDR=redis:6379
//	    - REDIS_PASSWORD=yourpassword
//	  depends_on:
//	    - redis
//
//	redis:
//	  image: redis:7-alpine
//	  command: redis-server --requirepass yourpassword
//	  ports:
//	    - "6379:6379"
//	  volumes:
//	    - redis_data:/data
//
//	redis-commander:
//	  image: rediscommander/redis-commander:latest
//	  environment:
//	    - REDIS_HOSTS=local:redis:6379:0:yourpassword
//	  ports:
//	    - "8081:8081"
//
// volumes:
//
//	redis_data:
//
// ```
//
// # Comparison with Other Stores
//
// | Feature              | Redis Store | PostgreSQL Store | SQLite Store |
// |---------------------|-------------|------------------|-------------|
// | Performance          | Very High   | High             | Medium      |
// | Persistence          | Optional    | Yes              | Yes         |
// | Memory Usage         | High        | Low              | Low         |
// | Scaling              | Horizontal  | Vertical         | Single      |
// | Query Capabilities   | Basic       | Advanced         | Basic       |
// | Transactions        | Limited     | Full             | Full        |
// | TTL Support         | Native      | Manual           | Manual      |
// | Best For           | High-speed  | Complex queries  | Simple apps |
package redis
