package gameserver

import (
	"sync"

	"github.com/google/uuid"
)

// ClientManager manages all connected proxies.
// Provides registration, lookup, and broadcast functionality.
// Thread-safe for concurrent access.
type ClientManager struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*GameClient // key: session ID

	writePool *BytePool
}

// NewClientManager creates a new client manager.
func NewClientManager() *ClientManager {
	return &ClientManager{
		clients: make(map[uuid.UUID]*GameClient, 64),
	}
}

// SetWritePool sets the pool broadcast frames are taken from.
func (cm *ClientManager) SetWritePool(pool *BytePool) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.writePool = pool
}

// Register adds a client to the manager.
func (cm *ClientManager) Register(client *GameClient) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.clients[client.SessionID()] = client
}

// Unregister removes a client from the manager.
// Called when client disconnects.
func (cm *ClientManager) Unregister(sessionID uuid.UUID) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	delete(cm.clients, sessionID)
}

// GetClient returns the client for given session ID.
// Returns nil if not found.
func (cm *ClientManager) GetClient(sessionID uuid.UUID) *GameClient {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.clients[sessionID]
}

// Count returns total number of connected clients.
func (cm *ClientManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.clients)
}

// ForEachClient iterates over all connected clients.
// fn receives GameClient pointer. If fn returns false, iteration stops.
func (cm *ClientManager) ForEachClient(fn func(*GameClient) bool) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	for _, client := range cm.clients {
		if !fn(client) {
			return
		}
	}
}
