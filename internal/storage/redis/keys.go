package redis

import "fmt"

// Key prefix for all drawit data
const keyPrefix = "drawit"

// roundsKey returns the Redis key for the LIST of finished rounds, newest at the head
func roundsKey() string {
	return fmt.Sprintf("%s:rounds", keyPrefix)
}
